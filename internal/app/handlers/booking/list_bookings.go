package booking

import (
	"context"

	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/queries"
	"driveshare/internal/app/uow"
	domaincar "driveshare/internal/domain/car"
)

const (
	renterBookingsKey = "booking.list_renter"
	ownerBookingsKey  = "booking.list_owner"
)

type RenterBookingsQuery struct {
	RenterID string
}

func (q RenterBookingsQuery) Key() string { return renterBookingsKey }

type RenterBookingsHandler struct {
	UoWFactory uow.Factory
}

func (h *RenterBookingsHandler) Handle(ctx context.Context, q RenterBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().ListByRenter(ctx, q.RenterID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookingCollection(items), nil
}

type OwnerBookingsQuery struct {
	OwnerID string
}

func (q OwnerBookingsQuery) Key() string { return ownerBookingsKey }

type OwnerBookingsHandler struct {
	UoWFactory uow.Factory
}

func (h *OwnerBookingsHandler) Handle(ctx context.Context, q OwnerBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().ListByOwner(ctx, domaincar.OwnerID(q.OwnerID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookingCollection(items), nil
}

var _ queries.Handler[RenterBookingsQuery, dto.BookingCollection] = (*RenterBookingsHandler)(nil)
var _ queries.Handler[OwnerBookingsQuery, dto.BookingCollection] = (*OwnerBookingsHandler)(nil)
