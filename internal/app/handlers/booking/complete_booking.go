package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/outbox"
	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
	domainledger "driveshare/internal/domain/ledger"
)

const completeBookingKey = "booking.complete"

var ErrNotBookingOwner = errors.New("booking: only the car owner may complete")

type CompleteBookingCommand struct {
	BookingID  string
	OwnerID    string
	ReturnedAt time.Time
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type CompleteBookingResult struct {
	Booking dto.BookingView `json:"booking"`
}

// CompleteBookingHandler settles a booking at car return: late-fee
// annotation via the engine, payment marked paid, and one ledger line per
// charge. It never creates a new booking record.
type CompleteBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*CompleteBookingResult, error) {
	unit, ctx, finish, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	result, err := h.handle(ctx, unit, cmd)
	if ferr := finish(err); ferr != nil {
		return nil, ferr
	}
	return result, nil
}

func (h *CompleteBookingHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd CompleteBookingCommand) (*CompleteBookingResult, error) {
	bookingAgg, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.OwnerID != "" && string(bookingAgg.OwnerID) != cmd.OwnerID {
		return nil, ErrNotBookingOwner
	}

	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	returnedAt := cmd.ReturnedAt
	if returnedAt.IsZero() {
		returnedAt = now
	}

	completion, err := bookingAgg.Complete(returnedAt, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bookingAgg); err != nil {
		return nil, err
	}

	if err := h.appendLedger(ctx, unit, bookingAgg, completion, now); err != nil {
		return nil, err
	}

	pending := bookingAgg.PendingEvents()
	bookingAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoderOrDefault(), pending); err != nil {
		return nil, err
	}

	return &CompleteBookingResult{Booking: dto.MapBooking(bookingAgg)}, nil
}

func (h *CompleteBookingHandler) appendLedger(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, completion domainbooking.Completion, now time.Time) error {
	rental, err := domainledger.NewTransaction(
		domainledger.TransactionID(uuid.NewString()),
		string(b.ID), b.CarID, b.RenterID, b.OwnerID,
		domainledger.KindRental, b.Total, string(b.Payment.Method), now,
	)
	if err != nil {
		return err
	}
	if err := unit.Ledger().Append(ctx, rental); err != nil {
		return err
	}
	if !completion.LateFee.IsPositive() {
		return nil
	}
	lateFee, err := domainledger.NewTransaction(
		domainledger.TransactionID(uuid.NewString()),
		string(b.ID), b.CarID, b.RenterID, b.OwnerID,
		domainledger.KindLateFee, completion.LateFee, string(b.Payment.Method), now,
	)
	if err != nil {
		return err
	}
	return unit.Ledger().Append(ctx, lateFee)
}

func (h *CompleteBookingHandler) encoderOrDefault() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CompleteBookingCommand, *CompleteBookingResult] = (*CompleteBookingHandler)(nil)
