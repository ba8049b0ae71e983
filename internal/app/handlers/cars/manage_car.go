package cars

import (
	"context"
	"time"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/outbox"
	"driveshare/internal/app/uow"
	domaincar "driveshare/internal/domain/car"
)

const (
	toggleAvailabilityKey = "cars.toggle_availability"
	removeCarKey          = "cars.remove"
)

type ToggleAvailabilityCommand struct {
	CarID     string
	OwnerID   string
	Available bool
}

func (c ToggleAvailabilityCommand) Key() string { return toggleAvailabilityKey }

type ToggleAvailabilityResult struct {
	Car dto.CarView `json:"car"`
}

// ToggleAvailabilityHandler flips the owner's maintenance flag. Existing
// bookings are untouched; the flag only gates new ones.
type ToggleAvailabilityHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *ToggleAvailabilityHandler) Handle(ctx context.Context, cmd ToggleAvailabilityCommand) (*ToggleAvailabilityResult, error) {
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

func (h *ToggleAvailabilityHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd ToggleAvailabilityCommand) (*ToggleAvailabilityResult, error) {
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
	if err := carAgg.SetAvailability(cmd.Available, now); err != nil {
		return nil, err
	}
	if err := unit.Cars().Save(ctx, carAgg); err != nil {
		return nil, err
	}
	pending := carAgg.PendingEvents()
	carAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}
	return &ToggleAvailabilityResult{Car: dto.MapCar(carAgg)}, nil
}

type RemoveCarCommand struct {
	CarID   string
	OwnerID string
}

func (c RemoveCarCommand) Key() string { return removeCarKey }

type RemoveCarResult struct {
	CarID string `json:"car_id"`
}

// RemoveCarHandler soft-deletes a listing so booking history keeps a
// car to point at.
type RemoveCarHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *RemoveCarHandler) Handle(ctx context.Context, cmd RemoveCarCommand) (*RemoveCarResult, error) {
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

func (h *RemoveCarHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd RemoveCarCommand) (*RemoveCarResult, error) {
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
	if err := carAgg.Remove(now); err != nil {
		return nil, err
	}
	if err := unit.Cars().Save(ctx, carAgg); err != nil {
		return nil, err
	}
	pending := carAgg.PendingEvents()
	carAgg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}
	return &RemoveCarResult{CarID: string(carAgg.ID)}, nil
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ToggleAvailabilityCommand, *ToggleAvailabilityResult] = (*ToggleAvailabilityHandler)(nil)
var _ commands.Handler[RemoveCarCommand, *RemoveCarResult] = (*RemoveCarHandler)(nil)
