package cars

import (
	"context"
	"time"

	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/policies"
	"driveshare/internal/app/queries"
	"driveshare/internal/app/uow"
	domaincar "driveshare/internal/domain/car"
	domainpricing "driveshare/internal/domain/pricing"
)

const (
	getCarKey       = "cars.get"
	listOwnerCarKey = "cars.list_owner"
	priceCapKey     = "cars.price_cap"
)

type GetCarQuery struct {
	CarID string
}

func (q GetCarQuery) Key() string { return getCarKey }

type GetCarHandler struct {
	UoWFactory uow.Factory
}

func (h *GetCarHandler) Handle(ctx context.Context, q GetCarQuery) (dto.CarView, error) {
	var zero dto.CarView
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	carAgg, err := unit.Cars().ByID(ctx, domaincar.ID(q.CarID))
	if err != nil {
		return zero, err
	}
	if carAgg.Removed {
		return zero, domaincar.ErrNotFound
	}
	return dto.MapCar(carAgg), nil
}

type OwnerCarsQuery struct {
	OwnerID string
}

func (q OwnerCarsQuery) Key() string { return listOwnerCarKey }

type OwnerCarsHandler struct {
	UoWFactory uow.Factory
}

func (h *OwnerCarsHandler) Handle(ctx context.Context, q OwnerCarsQuery) (dto.CarCatalog, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CarCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Cars().ByOwner(ctx, domaincar.OwnerID(q.OwnerID))
	if err != nil {
		return dto.CarCatalog{}, err
	}
	return dto.MapCarCatalog(items, len(items), len(items), 0), nil
}

type PriceCapQuery struct {
	Brand        string
	Model        string
	Transmission string
	Seats        int
	Year         int
}

func (q PriceCapQuery) Key() string { return priceCapKey }

// PriceCapHandler exposes the listing cap so the owner's pricing form
// can show the ceiling before the create command enforces it.
type PriceCapHandler struct {
	PriceCap policies.PriceCapPort
	Clock    func() time.Time
}

func (h *PriceCapHandler) Handle(ctx context.Context, q PriceCapQuery) (dto.PriceCapView, error) {
	attrs := domainpricing.VehicleAttrs{
		Brand:        q.Brand,
		Model:        q.Model,
		Transmission: domaincar.Transmission(q.Transmission),
		Seats:        q.Seats,
		Year:         q.Year,
	}
	if h.PriceCap != nil {
		cap, err := h.PriceCap.Compute(ctx, attrs)
		if err != nil {
			return dto.PriceCapView{}, err
		}
		return dto.MapPriceCap(cap), nil
	}
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	return dto.MapPriceCap(domainpricing.ComputeMaxPrice(attrs, now.Year())), nil
}

var _ queries.Handler[GetCarQuery, dto.CarView] = (*GetCarHandler)(nil)
var _ queries.Handler[OwnerCarsQuery, dto.CarCatalog] = (*OwnerCarsHandler)(nil)
var _ queries.Handler[PriceCapQuery, dto.PriceCapView] = (*PriceCapHandler)(nil)
