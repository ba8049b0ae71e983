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
	domainuser "driveshare/internal/domain/user"
	"driveshare/internal/domain/shared/money"
)

const createCarKey = "cars.create"

type CreateCarCommand struct {
	CommandID    string
	OwnerID      string
	Brand        string
	Model        string
	Year         int
	Plate        string
	FuelType     string
	Transmission string
	Seats        int
	PricePerDay  int64
	City         string
	State        string
	Area         string
	Address      string
}

func (c CreateCarCommand) Key() string { return createCarKey }

func (c CreateCarCommand) Validate() error {
	if c.OwnerID == "" {
		return domaincar.ErrOwnerRequired
	}
	if c.PricePerDay <= 0 {
		return domaincar.ErrInvalidRate
	}
	return nil
}

type CreateCarResult struct {
	Car      dto.CarView      `json:"car"`
	PriceCap dto.PriceCapView `json:"price_cap"`
}

// CreateCarHandler lists a car after re-running the price-cap policy
// server side. The listing form calls the same policy through the
// price-cap query, so a client cannot sneak past the cap.
type CreateCarHandler struct {
	UoWFactory uow.Factory
	PriceCap   policies.PriceCapPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CreateCarHandler) Handle(ctx context.Context, cmd CreateCarCommand) (*CreateCarResult, error) {
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

func (h *CreateCarHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd CreateCarCommand) (*CreateCarResult, error) {
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}

	owner, err := unit.Users().ByID(ctx, domainuser.ID(cmd.OwnerID))
	if err != nil {
		return nil, err
	}

	cap, err := h.computeCap(ctx, cmd, now)
	if err != nil {
		return nil, err
	}
	rate := money.Rupees(cmd.PricePerDay)
	if !cap.Allows(rate) {
		return nil, domainpricing.ErrAboveCap
	}

	carAgg, err := domaincar.New(domaincar.CreateParams{
		ID:           domaincar.ID(cmd.CommandID),
		Owner:        domaincar.OwnerID(cmd.OwnerID),
		Brand:        cmd.Brand,
		Model:        cmd.Model,
		Year:         cmd.Year,
		Plate:        cmd.Plate,
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
		Now: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Cars().Save(ctx, carAgg); err != nil {
		return nil, err
	}

	if err := owner.EnsureRole(domainuser.RoleOwner, now); err == nil {
		if err := unit.Users().Save(ctx, owner); err != nil {
			return nil, err
		}
	}

	pending := carAgg.PendingEvents()
	carAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoderOrDefault(), pending); err != nil {
		return nil, err
	}

	return &CreateCarResult{Car: dto.MapCar(carAgg), PriceCap: dto.MapPriceCap(cap)}, nil
}

func (h *CreateCarHandler) computeCap(ctx context.Context, cmd CreateCarCommand, now time.Time) (domainpricing.PriceCap, error) {
	attrs := domainpricing.VehicleAttrs{
		Brand:        cmd.Brand,
		Model:        cmd.Model,
		Transmission: domaincar.Transmission(cmd.Transmission),
		Seats:        cmd.Seats,
		Year:         cmd.Year,
	}
	if h.PriceCap != nil {
		return h.PriceCap.Compute(ctx, attrs)
	}
	return domainpricing.ComputeMaxPrice(attrs, now.Year()), nil
}

func (h *CreateCarHandler) encoderOrDefault() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateCarCommand, *CreateCarResult] = (*CreateCarHandler)(nil)
var _ middleware.SelfValidating = CreateCarCommand{}
