package booking

import (
	"context"
	"errors"
	"time"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/middleware"
	"driveshare/internal/app/outbox"
	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainuser "driveshare/internal/domain/user"
	"driveshare/internal/domain/shared/timeslot"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	CommandID       string
	CarID           string
	RenterID        string
	PickupAt        time.Time
	DropoffAt       time.Time
	PaymentMethod   string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

func (c CreateBookingCommand) Validate() error {
	if c.CarID == "" {
		return domaincar.ErrNotFound
	}
	if c.RenterID == "" {
		return domainbooking.ErrRenterRequired
	}
	slot := timeslot.Slot{PickupAt: c.PickupAt, DropoffAt: c.DropoffAt}
	return slot.Validate()
}

type CreateBookingResult struct {
	Booking dto.BookingView `json:"booking"`
}

// CreateBookingHandler runs the full availability pipeline and persists a
// confirmed booking. The quote endpoint shares the same engine functions,
// so a quoted amount and the charged amount cannot diverge.
type CreateBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
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

func (h *CreateBookingHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	slot, err := timeslot.New(cmd.PickupAt, cmd.DropoffAt)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateRequest(slot, now); err != nil {
		return nil, err
	}

	carAgg, err := unit.Cars().ByID(ctx, domaincar.ID(cmd.CarID))
	if err != nil {
		return nil, err
	}
	if !carAgg.Bookable() {
		return nil, domainbooking.ErrCarUnavailable
	}

	if _, err := unit.Users().ByID(ctx, domainuser.ID(cmd.RenterID)); err != nil {
		return nil, err
	}

	// Advisory check so conflicts come back with their intervals; the
	// authoritative gate is InsertIfFree below.
	existing, err := unit.Bookings().FindOverlapping(ctx, carAgg.ID, slot)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, conflictFrom(carAgg.ID, existing)
	}

	bookingAgg, err := domainbooking.New(domainbooking.CreateParams{
		ID:            domainbooking.ID(cmd.CommandID),
		CarID:         carAgg.ID,
		RenterID:      cmd.RenterID,
		OwnerID:       carAgg.Owner,
		Slot:          slot,
		PricePerDay:   carAgg.PricePerDay,
		PaymentMethod: domainbooking.PaymentMethod(cmd.PaymentMethod),
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().InsertIfFree(ctx, bookingAgg); err != nil {
		return nil, err
	}

	pending := bookingAgg.PendingEvents()
	bookingAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	return &CreateBookingResult{Booking: dto.MapBooking(bookingAgg)}, nil
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func conflictFrom(carID domaincar.ID, existing []*domainbooking.Booking) error {
	conflict := &domainbooking.ConflictError{CarID: carID}
	for _, b := range existing {
		conflict.Conflicts = append(conflict.Conflicts, b.Slot)
	}
	return conflict
}

// IsValidationError classifies the engine's expected rejections so the
// HTTP layer can map them apart from infrastructure failures.
func IsValidationError(err error) bool {
	var conflict *domainbooking.ConflictError
	return errors.Is(err, domainbooking.ErrLeadTimeTooShort) ||
		errors.Is(err, domainbooking.ErrDurationTooShort) ||
		errors.Is(err, domainbooking.ErrCarUnavailable) ||
		errors.Is(err, domainbooking.ErrCancelWindowClosed) ||
		errors.Is(err, timeslot.ErrInvalidInterval) ||
		errors.As(err, &conflict)
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.SelfValidating = CreateBookingCommand{}
