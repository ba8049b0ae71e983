package cars

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

const searchCarsKey = "cars.search"

type SearchCarsQuery struct {
	City         string
	Transmission string
	FuelType     string
	MinSeats     int
	MaxDailyRate int64
	Sort         string
	Limit        int
	Offset       int

	// Optional rental interval. When both are set, only cars free for
	// the whole interval come back.
	PickupAt  time.Time
	DropoffAt time.Time
}

func (q SearchCarsQuery) Key() string { return searchCarsKey }

func (q SearchCarsQuery) hasInterval() bool {
	return !q.PickupAt.IsZero() || !q.DropoffAt.IsZero()
}

// SearchCarsHandler runs the catalog search. Attribute filters push down
// into the car repository; interval filtering stays here because it
// needs the booking side.
type SearchCarsHandler struct {
	UoWFactory uow.Factory
	Clock      func() time.Time
}

func (h *SearchCarsHandler) Handle(ctx context.Context, q SearchCarsQuery) (dto.CarCatalog, error) {
	var zero dto.CarCatalog
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domaincar.SearchParams{
		City:         q.City,
		Transmission: domaincar.Transmission(q.Transmission),
		FuelType:     domaincar.FuelType(q.FuelType),
		MinSeats:     q.MinSeats,
		MaxDailyRate: q.MaxDailyRate,
		Sort:         domaincar.SearchSort(q.Sort),
		Limit:        q.Limit,
		Offset:       q.Offset,
	}.Normalized()

	var slot timeslot.Slot
	if q.hasInterval() {
		slot, err = timeslot.New(q.PickupAt, q.DropoffAt)
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
	}

	result, err := unit.Cars().Search(ctx, params)
	if err != nil {
		return zero, err
	}
	if !q.hasInterval() {
		return dto.MapCarCatalog(result.Items, result.Total, params.Limit, params.Offset), nil
	}

	free := make([]*domaincar.Car, 0, len(result.Items))
	for _, c := range result.Items {
		if !c.Bookable() {
			continue
		}
		overlapping, err := unit.Bookings().FindOverlapping(ctx, c.ID, slot)
		if err != nil {
			return zero, err
		}
		if len(overlapping) == 0 {
			free = append(free, c)
		}
	}
	return dto.MapCarCatalog(free, len(free), params.Limit, params.Offset), nil
}

var _ queries.Handler[SearchCarsQuery, dto.CarCatalog] = (*SearchCarsHandler)(nil)
