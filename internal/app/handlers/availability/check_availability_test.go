package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
	"driveshare/internal/infra/storage/memory"
)

var baseNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return baseNow }

func setup(t *testing.T) (*CheckAvailabilityHandler, *memory.CarRepository, *memory.BookingRepository) {
	t.Helper()
	cars := memory.NewCarRepository()
	bookings := memory.NewBookingRepository()
	factory := memory.Factory{
		CarRepo:     cars,
		BookingRepo: bookings,
		UserRepo:    memory.NewUserRepository(),
		LedgerRepo:  memory.NewLedgerRepository(),
	}

	listing, err := domaincar.New(domaincar.CreateParams{
		ID:          "car-1",
		Owner:       "owner-1",
		Brand:       "Tata",
		Model:       "Nexon",
		Plate:       "MH12CD4321",
		Seats:       5,
		PricePerDay: money.Rupees(2200),
		Location:    domaincar.Location{City: "Pune"},
		Now:         baseNow.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, cars.Save(context.Background(), listing))

	return &CheckAvailabilityHandler{UoWFactory: factory, Clock: fixedClock}, cars, bookings
}

func seedBooking(t *testing.T, bookings *memory.BookingRepository, pickup, dropoff time.Time) {
	t.Helper()
	slot, err := timeslot.New(pickup, dropoff)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID: "bk-1", CarID: "car-1", RenterID: "renter-1", OwnerID: "owner-1",
		Slot:        slot,
		PricePerDay: money.Rupees(2200),
		CreatedAt:   baseNow,
	})
	require.NoError(t, err)
	require.NoError(t, bookings.Save(context.Background(), b))
}

func TestCheckAvailabilityFreeSlot(t *testing.T) {
	h, _, _ := setup(t)

	pickup := baseNow.Add(24 * time.Hour)
	view, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: pickup, DropoffAt: pickup.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.Empty(t, view.Conflicts)
}

func TestCheckAvailabilityReportsConflicts(t *testing.T) {
	h, _, bookings := setup(t)

	pickup := baseNow.Add(24 * time.Hour)
	seedBooking(t, bookings, pickup, pickup.Add(8*time.Hour))

	// Overlapping request is busy and the taken interval comes back.
	view, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: pickup.Add(4 * time.Hour), DropoffAt: pickup.Add(12 * time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, view.Available)
	require.Len(t, view.Conflicts, 1)
	assert.Equal(t, pickup, view.Conflicts[0].PickupAt)

	// A slot starting exactly at the existing dropoff is free.
	view, err = h.Handle(context.Background(), CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: pickup.Add(8 * time.Hour), DropoffAt: pickup.Add(16 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, view.Available)
}

func TestCheckAvailabilityUnbookableCar(t *testing.T) {
	h, cars, _ := setup(t)
	ctx := context.Background()

	listing, err := cars.ByID(ctx, "car-1")
	require.NoError(t, err)
	require.NoError(t, listing.SetAvailability(false, baseNow))
	require.NoError(t, cars.Save(ctx, listing))

	pickup := baseNow.Add(24 * time.Hour)
	view, err := h.Handle(ctx, CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: pickup, DropoffAt: pickup.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, view.Available)
}

func TestCheckAvailabilityValidatesRequest(t *testing.T) {
	h, _, _ := setup(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: baseNow.Add(time.Hour), DropoffAt: baseNow.Add(9 * time.Hour),
	})
	assert.ErrorIs(t, err, domainbooking.ErrLeadTimeTooShort)

	pickup := baseNow.Add(24 * time.Hour)
	_, err = h.Handle(ctx, CheckAvailabilityQuery{
		CarID: "car-1", PickupAt: pickup, DropoffAt: pickup.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, domainbooking.ErrDurationTooShort)

	_, err = h.Handle(ctx, CheckAvailabilityQuery{
		CarID: "missing", PickupAt: pickup, DropoffAt: pickup.Add(8 * time.Hour),
	})
	assert.ErrorIs(t, err, domaincar.ErrNotFound)
}
