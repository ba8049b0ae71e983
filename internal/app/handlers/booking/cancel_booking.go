package booking

import (
	"context"
	"errors"
	"time"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/outbox"
	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

var ErrNotBookingRenter = errors.New("booking: only the renter may cancel")

type CancelBookingCommand struct {
	BookingID string
	RenterID  string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	Booking dto.BookingView `json:"booking"`
}

type CancelBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

func (h *CancelBookingHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	bookingAgg, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.RenterID != "" && bookingAgg.RenterID != cmd.RenterID {
		return nil, ErrNotBookingRenter
	}

	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	if err := bookingAgg.Cancel(now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bookingAgg); err != nil {
		return nil, err
	}

	pending := bookingAgg.PendingEvents()
	bookingAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoderOrDefault(), pending); err != nil {
		return nil, err
	}

	return &CancelBookingResult{Booking: dto.MapBooking(bookingAgg)}, nil
}

func (h *CancelBookingHandler) encoderOrDefault() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
