package cars

import (
	"context"
	"time"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/middleware"
	"driveshare/internal/app/outbox"
	"driveshare/internal/app/policies"
	"driveshare/internal/app/uow"
	domaincar "driveshare/internal/domain/car"
	domainpricing "driveshare/internal/domain/pricing"
	"driveshare/internal/domain/shared/money"
)

const updateCarKey = "cars.update"

type UpdateCarCommand struct {
	CarID        string
	OwnerID      string
	Brand        string
	Model        string
	Year         int
	FuelType     string
	Transmission string
	Seats        int
	PricePerDay  int64
	City         string
	State        string
	Area         string
	Address      string
}

func (c UpdateCarCommand) Key() string { return updateCarKey }

func (c UpdateCarCommand) Validate() error {
	if c.OwnerID == "" {
		return domaincar.ErrOwnerRequired
	}
	if c.PricePerDay <= 0 {
		return domaincar.ErrInvalidRate
	}
	return nil
}

type UpdateCarResult struct {
	Car dto.CarView `json:"car"`
}

// UpdateCarHandler edits a listing. The cap is recomputed from the new
// attributes because a brand or model edit moves the ceiling.
type UpdateCarHandler struct {
	UoWFactory uow.Factory
	PriceCap   policies.PriceCapPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *UpdateCarHandler) Handle(ctx context.Context, cmd UpdateCarCommand) (*UpdateCarResult, error) {
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

func (h *UpdateCarHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd UpdateCarCommand) (*UpdateCarResult, error) {
	carAgg, err := unit.Cars().ByID(ctx, domaincar.ID(cmd.CarID))
	if err != nil {
		return nil, err
	}
	if string(carAgg.Owner) != cmd.OwnerID {
		return nil, domaincar.ErrNotOwned
	}

	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}

	attrs := domainpricing.VehicleAttrs{
		Brand:        cmd.Brand,
		Model:        cmd.Model,
		Transmission: domaincar.Transmission(cmd.Transmission),
		Seats:        cmd.Seats,
		Year:         cmd.Year,
	}
	cap, err := h.computeCap(ctx, attrs, now)
	if err != nil {
		return nil, err
	}
	rate := money.Rupees(cmd.PricePerDay)
	if !cap.Allows(rate) {
		return nil, domainpricing.ErrAboveCap
	}

	err = carAgg.Update(domaincar.UpdateParams{
		Brand:        cmd.Brand,
		Model:        cmd.Model,
		Year:         cmd.Year,
		FuelType:     domaincar.FuelType(cmd.FuelType),
		Transmission: domaincar.Transmission(cmd.Transmission),
		Seats:        cmd.Seats,
		PricePerDay:  rate,
		Location: domaincar.Location{
			City:    cmd.City,
			State:   cmd.State,
			Area:    cmd.Area,
			Address: cmd.Address,
		},
	}, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Cars().Save(ctx, carAgg); err != nil {
		return nil, err
	}

	pending := carAgg.PendingEvents()
	carAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoderOrDefault(), pending); err != nil {
		return nil, err
	}
	return &UpdateCarResult{Car: dto.MapCar(carAgg)}, nil
}

func (h *UpdateCarHandler) computeCap(ctx context.Context, attrs domainpricing.VehicleAttrs, now time.Time) (domainpricing.PriceCap, error) {
	if h.PriceCap != nil {
		return h.PriceCap.Compute(ctx, attrs)
	}
	return domainpricing.ComputeMaxPrice(attrs, now.Year()), nil
}

func (h *UpdateCarHandler) encoderOrDefault() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UpdateCarCommand, *UpdateCarResult] = (*UpdateCarHandler)(nil)
var _ middleware.SelfValidating = UpdateCarCommand{}
