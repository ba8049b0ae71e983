package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/middleware"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainuser "driveshare/internal/domain/user"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/infra/storage/memory"
)

var baseNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return baseNow }

type fixture struct {
	factory  memory.Factory
	bookings *memory.BookingRepository
	cars     *memory.CarRepository
	ledger   *memory.LedgerRepository
	outbox   *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings: memory.NewBookingRepository(),
		cars:     memory.NewCarRepository(),
		ledger:   memory.NewLedgerRepository(),
		outbox:   memory.NewOutbox(),
	}
	users := memory.NewUserRepository()
	f.factory = memory.Factory{
		CarRepo:     f.cars,
		BookingRepo: f.bookings,
		UserRepo:    users,
		LedgerRepo:  f.ledger,
	}

	ctx := context.Background()
	for _, u := range []struct {
		id    string
		email string
		roles []domainuser.Role
	}{
		{"owner-1", "owner@example.com", []domainuser.Role{domainuser.RoleOwner}},
		{"renter-1", "renter@example.com", nil},
		{"renter-2", "renter2@example.com", nil},
	} {
		account, err := domainuser.New(domainuser.CreateParams{
			ID: domainuser.ID(u.id), Email: u.email, Name: u.id, Roles: u.roles, CreatedAt: baseNow,
		})
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, account))
	}

	listing, err := domaincar.New(domaincar.CreateParams{
		ID:          "car-1",
		Owner:       "owner-1",
		Brand:       "Hyundai",
		Model:       "Creta",
		Plate:       "KA01AB1234",
		Seats:       5,
		PricePerDay: money.Rupees(3000),
		Location:    domaincar.Location{City: "Bengaluru"},
		Now:         baseNow.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, f.cars.Save(ctx, listing))
	return f
}

func (f *fixture) createHandler() *CreateBookingHandler {
	return &CreateBookingHandler{
		UoWFactory: f.factory,
		Outbox:     f.outbox,
		Clock:      fixedClock,
	}
}

func createCmd(id, renter string, pickup, dropoff time.Time) CreateBookingCommand {
	return CreateBookingCommand{
		CommandID: id,
		CarID:     "car-1",
		RenterID:  renter,
		PickupAt:  pickup,
		DropoffAt: dropoff,
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pickup := baseNow.Add(24 * time.Hour)
	result, err := f.createHandler().Handle(ctx, createCmd("bk-1", "renter-1", pickup, pickup.Add(24*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, "bk-1", result.Booking.ID)
	assert.Equal(t, string(domainbooking.StatusConfirmed), result.Booking.Status)
	assert.Equal(t, int64(1), result.Booking.BillableDays)
	assert.Equal(t, int64(3000), result.Booking.TotalAmount.Amount)
	assert.Equal(t, string(domainbooking.PaymentCOD), result.Booking.PaymentMethod)
	assert.Equal(t, "owner-1", result.Booking.OwnerID)

	stored, err := f.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), stored.Total.Amount)

	doc, err := f.outbox.Claim(ctx, "test")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "booking.confirmed", doc.Name)
	assert.Equal(t, "bk-1", doc.Aggregate)
}

func TestCreateBookingTimingRules(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, createCmd("bk-1", "renter-1", baseNow.Add(2*time.Hour), baseNow.Add(10*time.Hour)))
	assert.ErrorIs(t, err, domainbooking.ErrLeadTimeTooShort)

	pickup := baseNow.Add(24 * time.Hour)
	_, err = h.Handle(ctx, createCmd("bk-2", "renter-1", pickup, pickup.Add(3*time.Hour)))
	assert.ErrorIs(t, err, domainbooking.ErrDurationTooShort)

	_, err = f.bookings.ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()

	pickup := baseNow.Add(24 * time.Hour)
	first, err := h.Handle(ctx, createCmd("bk-1", "renter-1", pickup, pickup.Add(8*time.Hour)))
	require.NoError(t, err)

	_, err = h.Handle(ctx, createCmd("bk-2", "renter-2", pickup.Add(4*time.Hour), pickup.Add(12*time.Hour)))
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domaincar.ID("car-1"), conflict.CarID)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, first.Booking.Slot.PickupAt, conflict.Conflicts[0].PickupAt)
}

func TestCreateBookingBackToBack(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()

	pickup := baseNow.Add(24 * time.Hour)
	dropoff := pickup.Add(8 * time.Hour)
	_, err := h.Handle(ctx, createCmd("bk-1", "renter-1", pickup, dropoff))
	require.NoError(t, err)

	// The next renter picks up the moment the previous slot ends.
	result, err := h.Handle(ctx, createCmd("bk-2", "renter-2", dropoff, dropoff.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Booking.BillableDays)
	assert.Equal(t, int64(3000), result.Booking.TotalAmount.Amount)
}

func TestCreateBookingGuards(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()
	pickup := baseNow.Add(24 * time.Hour)

	cmd := createCmd("bk-1", "renter-1", pickup, pickup.Add(8*time.Hour))
	cmd.CarID = "missing"
	_, err := h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, domaincar.ErrNotFound)

	_, err = h.Handle(ctx, createCmd("bk-2", "ghost", pickup, pickup.Add(8*time.Hour)))
	assert.ErrorIs(t, err, domainuser.ErrNotFound)

	listing, err := f.cars.ByID(ctx, "car-1")
	require.NoError(t, err)
	require.NoError(t, listing.SetAvailability(false, baseNow))
	require.NoError(t, f.cars.Save(ctx, listing))

	_, err = h.Handle(ctx, createCmd("bk-3", "renter-1", pickup, pickup.Add(8*time.Hour)))
	assert.ErrorIs(t, err, domainbooking.ErrCarUnavailable)
}

func TestCreateBookingSnapshotsRate(t *testing.T) {
	f := newFixture(t)
	h := f.createHandler()
	ctx := context.Background()

	pickup := baseNow.Add(24 * time.Hour)
	_, err := h.Handle(ctx, createCmd("bk-1", "renter-1", pickup, pickup.Add(24*time.Hour)))
	require.NoError(t, err)

	listing, err := f.cars.ByID(ctx, "car-1")
	require.NoError(t, err)
	require.NoError(t, listing.Update(domaincar.UpdateParams{
		Brand:       listing.Brand,
		Model:       listing.Model,
		Seats:       listing.Seats,
		PricePerDay: money.Rupees(5000),
		Location:    listing.Location,
	}, baseNow))
	require.NoError(t, f.cars.Save(ctx, listing))

	stored, err := f.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), stored.PricePerDay.Amount)
	assert.Equal(t, int64(3000), stored.Total.Amount)
}

func TestQuoteMatchesCreatedBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pickup := baseNow.Add(24 * time.Hour)
	dropoff := pickup.Add(30 * time.Hour)

	quoteHandler := &QuoteHandler{UoWFactory: f.factory, Clock: fixedClock}
	quote, err := quoteHandler.Handle(ctx, QuoteQuery{CarID: "car-1", PickupAt: pickup, DropoffAt: dropoff})
	require.NoError(t, err)
	assert.Equal(t, int64(2), quote.BillableDays)
	assert.Equal(t, int64(6000), quote.TotalAmount.Amount)

	result, err := f.createHandler().Handle(ctx, createCmd("bk-1", "renter-1", pickup, dropoff))
	require.NoError(t, err)
	assert.Equal(t, quote.TotalAmount, result.Booking.TotalAmount)
	assert.Equal(t, quote.BillableDays, result.Booking.BillableDays)

	// Once the slot is taken the quote reports the conflict.
	_, err = quoteHandler.Handle(ctx, QuoteQuery{CarID: "car-1", PickupAt: pickup, DropoffAt: dropoff})
	var conflict *domainbooking.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCreateBookingIdempotentReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, CreateBookingCommand{}.Key(), f.createHandler())
	chained := middleware.ChainCommands(
		bus,
		middleware.Validation(),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil),
		middleware.Transaction(f.factory, nil),
		middleware.OutboxFlush(f.outbox),
	)

	pickup := baseNow.Add(24 * time.Hour)
	cmd := createCmd("bk-1", "renter-1", pickup, pickup.Add(24*time.Hour))
	cmd.IdempotencyKeyV = "idem-key-1"

	first, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, chained, cmd)
	require.NoError(t, err)

	// A retry with the same key replays the stored result instead of
	// hitting the conflict the second insert would raise.
	second, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, chained, cmd)
	require.NoError(t, err)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, first.Booking.TotalAmount, second.Booking.TotalAmount)

	mine, err := f.bookings.ListByRenter(ctx, "renter-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// A different key for the same slot is a real conflict.
	other := createCmd("bk-2", "renter-2", pickup, pickup.Add(24*time.Hour))
	other.IdempotencyKeyV = "idem-key-2"
	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, chained, other)
	assert.Error(t, err)
}
