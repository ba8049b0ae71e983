package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

var repoNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newBooking(t *testing.T, id string, carID string, pickup, dropoff time.Time) *domainbooking.Booking {
	t.Helper()
	slot, err := timeslot.New(pickup, dropoff)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:          domainbooking.ID(id),
		CarID:       domaincar.ID(carID),
		RenterID:    "renter-" + id,
		OwnerID:     "owner-1",
		Slot:        slot,
		PricePerDay: money.Rupees(2000),
		CreatedAt:   repoNow,
	})
	require.NoError(t, err)
	return b
}

func TestBookingRepositoryInsertIfFree(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	first := newBooking(t, "bk-1", "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	require.NoError(t, repo.InsertIfFree(ctx, first))

	overlapping := newBooking(t, "bk-2", "car-1", repoNow.Add(30*time.Hour), repoNow.Add(40*time.Hour))
	err := repo.InsertIfFree(ctx, overlapping)
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domaincar.ID("car-1"), conflict.CarID)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, first.Slot, conflict.Conflicts[0])

	// Back-to-back is allowed, and other cars are unaffected.
	adjacent := newBooking(t, "bk-3", "car-1", repoNow.Add(32*time.Hour), repoNow.Add(40*time.Hour))
	require.NoError(t, repo.InsertIfFree(ctx, adjacent))
	otherCar := newBooking(t, "bk-4", "car-2", repoNow.Add(24*time.Hour), repoNow.Add(40*time.Hour))
	require.NoError(t, repo.InsertIfFree(ctx, otherCar))
}

func TestBookingRepositoryInsertIfFreeIgnoresInactive(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	cancelled := newBooking(t, "bk-1", "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	require.NoError(t, cancelled.Cancel(repoNow))
	require.NoError(t, repo.Save(ctx, cancelled))

	replacement := newBooking(t, "bk-2", "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	require.NoError(t, repo.InsertIfFree(ctx, replacement))
}

func TestBookingRepositoryInsertIfFreeConcurrent(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := newBooking(t, fmt.Sprintf("bk-%d", i), "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
			errs[i] = repo.InsertIfFree(ctx, b)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var conflict *domainbooking.ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, winners, "exactly one concurrent insert must win")
}

func TestBookingRepositoryByIDReturnsCopies(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	b := newBooking(t, "bk-1", "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	require.NoError(t, repo.Save(ctx, b))

	loaded, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	loaded.Status = domainbooking.StatusCancelled

	again, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, again.Status)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestBookingRepositoryListings(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	a := newBooking(t, "bk-1", "car-1", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	b := newBooking(t, "bk-2", "car-2", repoNow.Add(24*time.Hour), repoNow.Add(32*time.Hour))
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	byRenter, err := repo.ListByRenter(ctx, "renter-bk-1")
	require.NoError(t, err)
	require.Len(t, byRenter, 1)
	assert.Equal(t, domainbooking.ID("bk-1"), byRenter[0].ID)

	byOwner, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)
}

func newCar(t *testing.T, id, owner, brand, city string, price int64, created time.Time) *domaincar.Car {
	t.Helper()
	c, err := domaincar.New(domaincar.CreateParams{
		ID:          domaincar.ID(id),
		Owner:       domaincar.OwnerID(owner),
		Brand:       brand,
		Model:       "Test",
		Plate:       "KA01" + id,
		Seats:       5,
		PricePerDay: money.Rupees(price),
		Location:    domaincar.Location{City: city},
		Now:         created,
	})
	require.NoError(t, err)
	return c
}

func TestCarRepositorySearchFiltersAndPaging(t *testing.T) {
	repo := NewCarRepository()
	ctx := context.Background()

	cheap := newCar(t, "car-1", "owner-1", "Maruti", "Bengaluru", 1500, repoNow)
	mid := newCar(t, "car-2", "owner-1", "Hyundai", "Bengaluru", 2500, repoNow.Add(time.Minute))
	pricey := newCar(t, "car-3", "owner-2", "Toyota", "Mumbai", 6000, repoNow.Add(2*time.Minute))
	for _, c := range []*domaincar.Car{cheap, mid, pricey} {
		require.NoError(t, repo.Save(ctx, c))
	}

	res, err := repo.Search(ctx, domaincar.SearchParams{City: "bengaluru"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, domaincar.ID("car-1"), res.Items[0].ID, "default sort is price ascending")

	res, err = repo.Search(ctx, domaincar.SearchParams{MaxDailyRate: 2000})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domaincar.ID("car-1"), res.Items[0].ID)

	res, err = repo.Search(ctx, domaincar.SearchParams{Sort: domaincar.SortByPriceDesc, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domaincar.ID("car-2"), res.Items[0].ID)
}

func TestCarRepositorySearchSkipsRemoved(t *testing.T) {
	repo := NewCarRepository()
	ctx := context.Background()

	c := newCar(t, "car-1", "owner-1", "Tata", "Pune", 1800, repoNow)
	require.NoError(t, c.Remove(repoNow))
	require.NoError(t, repo.Save(ctx, c))

	res, err := repo.Search(ctx, domaincar.SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	byOwner, err := repo.ByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, byOwner)
}

func TestCarRepositorySaveBumpsVersion(t *testing.T) {
	repo := NewCarRepository()
	ctx := context.Background()

	c := newCar(t, "car-1", "owner-1", "Kia", "Delhi", 2200, repoNow)
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(1), c.Version)
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(2), c.Version)
}
