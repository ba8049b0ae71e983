package availability

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

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	CarID     string
	PickupAt  time.Time
	DropoffAt time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

// CheckAvailabilityHandler answers "is this car free for this interval"
// and reports the conflicting intervals so the UI can render them. Unlike
// the quote, a busy slot is a normal answer here, not an error.
type CheckAvailabilityHandler struct {
	UoWFactory uow.Factory
	Clock      func() time.Time
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityView, error) {
	var zero dto.AvailabilityView
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
		return dto.MapAvailability(string(carAgg.ID), false, nil), nil
	}

	existing, err := unit.Bookings().FindOverlapping(ctx, carAgg.ID, slot)
	if err != nil {
		return zero, err
	}
	conflicts := make([]timeslot.Slot, 0, len(existing))
	for _, b := range existing {
		conflicts = append(conflicts, b.Slot)
	}
	return dto.MapAvailability(string(carAgg.ID), len(conflicts) == 0, conflicts), nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityView] = (*CheckAvailabilityHandler)(nil)
