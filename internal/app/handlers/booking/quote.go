package booking

import (
	"context"
	"time"

	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/queries"
	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/timeslot"
)

const quoteKey = "booking.quote"

type QuoteQuery struct {
	CarID     string
	PickupAt  time.Time
	DropoffAt time.Time
}

func (q QuoteQuery) Key() string { return quoteKey }

// QuoteHandler prices an interval with the exact pipeline booking
// creation runs, including the overlap check, so a successful quote means
// the slot was takeable at that instant.
type QuoteHandler struct {
	UoWFactory uow.Factory
	Clock      func() time.Time
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.QuoteView, error) {
	var zero dto.QuoteView
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	slot, err := timeslot.New(q.PickupAt, q.DropoffAt)
	if err != nil {
		return zero, err
	}
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	if err := domainbooking.ValidateRequest(slot, now); err != nil {
		return zero, err
	}

	carAgg, err := unit.Cars().ByID(ctx, domaincar.ID(q.CarID))
	if err != nil {
		return zero, err
	}
	if !carAgg.Bookable() {
		return zero, domainbooking.ErrCarUnavailable
	}

	existing, err := unit.Bookings().FindOverlapping(ctx, carAgg.ID, slot)
	if err != nil {
		return zero, err
	}
	if len(existing) > 0 {
		return zero, conflictFrom(carAgg.ID, existing)
	}

	quote := domainbooking.QuoteFor(carAgg.PricePerDay, slot)
	return dto.MapQuote(string(carAgg.ID), quote), nil
}

var _ queries.Handler[QuoteQuery, dto.QuoteView] = (*QuoteHandler)(nil)
