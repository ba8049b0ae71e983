package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func slotAt(t *testing.T, pickupOffset, duration time.Duration) timeslot.Slot {
	t.Helper()
	pickup := testNow.Add(pickupOffset)
	s, err := timeslot.New(pickup, pickup.Add(duration))
	require.NoError(t, err)
	return s
}

func TestValidateRequestLeadTime(t *testing.T) {
	cases := []struct {
		name   string
		offset time.Duration
		want   error
	}{
		{"pickup in the past", -time.Hour, ErrLeadTimeTooShort},
		{"pickup right now", 0, ErrLeadTimeTooShort},
		{"one second short of the window", 3*time.Hour - time.Second, ErrLeadTimeTooShort},
		{"exactly at the window", 3 * time.Hour, nil},
		{"well ahead", 48 * time.Hour, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(slotAt(t, tc.offset, 8*time.Hour), testNow)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateRequestMinDuration(t *testing.T) {
	// Duration applies regardless of how far ahead the pickup is.
	err := ValidateRequest(slotAt(t, 72*time.Hour, 3*time.Hour+59*time.Minute), testNow)
	assert.ErrorIs(t, err, ErrDurationTooShort)

	err = ValidateRequest(slotAt(t, 72*time.Hour, 4*time.Hour), testNow)
	assert.NoError(t, err)
}

func TestQuoteForRoundsUpToWholeDays(t *testing.T) {
	rate := money.Rupees(3000)
	cases := []struct {
		name     string
		duration time.Duration
		days     int64
		total    int64
	}{
		{"four hours bills one day", 4 * time.Hour, 1, 3000},
		{"exactly 24h bills one day", 24 * time.Hour, 1, 3000},
		{"25h bills two days", 25 * time.Hour, 2, 6000},
		{"three full days", 72 * time.Hour, 3, 9000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := QuoteFor(rate, slotAt(t, 24*time.Hour, tc.duration))
			assert.Equal(t, tc.days, q.BillableDays)
			assert.Equal(t, tc.total, q.Total.Amount)
			assert.Equal(t, rate, q.PricePerDay)
		})
	}
}

func TestQuoteForIsDeterministic(t *testing.T) {
	rate := money.Rupees(2500)
	slot := slotAt(t, 24*time.Hour, 30*time.Hour)

	first := QuoteFor(rate, slot)
	second := QuoteFor(rate, slot)
	assert.Equal(t, first, second)
}

func TestQuoteForIsMonotonicInDuration(t *testing.T) {
	rate := money.Rupees(1800)
	prev := int64(0)
	for hours := 4; hours <= 96; hours += 7 {
		q := QuoteFor(rate, slotAt(t, 24*time.Hour, time.Duration(hours)*time.Hour))
		assert.GreaterOrEqual(t, q.Total.Amount, prev, "total decreased at %dh", hours)
		prev = q.Total.Amount
	}
}

func TestLateFeeForWithinGrace(t *testing.T) {
	rate := money.Rupees(2400)
	dropoff := testNow

	for _, delta := range []time.Duration{-time.Hour, 0, 15 * time.Minute} {
		c := LateFeeFor(rate, dropoff, dropoff.Add(delta))
		assert.Zero(t, c.LateFee.Amount, "delta %s should be free", delta)
		assert.Zero(t, c.LateMinutes)
		assert.Zero(t, c.LateHours)
	}
}

func TestLateFeeForBeyondGrace(t *testing.T) {
	rate := money.Rupees(2400) // 100 per hour
	dropoff := testNow

	cases := []struct {
		name    string
		delta   time.Duration
		minutes int64
		hours   int64
		fee     int64
	}{
		{"sixteen minutes late", 16 * time.Minute, 16, 1, 100},
		{"one hour late", time.Hour, 60, 1, 100},
		{"61 minutes late starts a second hour", 61 * time.Minute, 61, 2, 200},
		{"five hours late", 5 * time.Hour, 300, 5, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := LateFeeFor(rate, dropoff, dropoff.Add(tc.delta))
			assert.Equal(t, tc.minutes, c.LateMinutes)
			assert.Equal(t, tc.hours, c.LateHours)
			assert.Equal(t, tc.fee, c.LateFee.Amount)
			assert.Equal(t, money.DefaultCurrency, c.LateFee.Currency)
		})
	}
}

func TestLateFeeUsesFloorOfHourlyRate(t *testing.T) {
	// 2500/24 floors to 104 per hour.
	c := LateFeeFor(money.Rupees(2500), testNow, testNow.Add(2*time.Hour))
	assert.Equal(t, int64(2), c.LateHours)
	assert.Equal(t, int64(208), c.LateFee.Amount)
}

func TestCancellableAt(t *testing.T) {
	pickup := testNow.Add(24 * time.Hour)

	assert.True(t, CancellableAt(pickup, pickup.Add(-3*time.Hour-time.Second)))
	assert.False(t, CancellableAt(pickup, pickup.Add(-3*time.Hour)))
	assert.False(t, CancellableAt(pickup, pickup.Add(-2*time.Hour-59*time.Minute)))
	assert.False(t, CancellableAt(pickup, pickup))
}

func TestConflictErrorListsIntervals(t *testing.T) {
	err := &ConflictError{
		CarID: "car-1",
		Conflicts: []timeslot.Slot{
			{PickupAt: testNow, DropoffAt: testNow.Add(8 * time.Hour)},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "car-1")
	assert.Contains(t, msg, "2024-06-01T10:00:00Z")
	assert.Contains(t, msg, "2024-06-01T18:00:00Z")
}

func TestBackToBackDayRental(t *testing.T) {
	// A car returned at 18:00 can be picked up by the next renter at 18:00
	// the same day, and a full 24h rental bills exactly one day.
	existing, err := timeslot.New(
		time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	requested, err := timeslot.New(
		time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.False(t, existing.Overlaps(requested))

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ValidateRequest(requested, now))

	q := QuoteFor(money.Rupees(3000), requested)
	assert.Equal(t, int64(1), q.BillableDays)
	assert.Equal(t, int64(3000), q.Total.Amount)
}
