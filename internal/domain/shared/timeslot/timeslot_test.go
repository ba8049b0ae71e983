package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, pickup, dropoff string) Slot {
	t.Helper()
	p, err := time.Parse(time.RFC3339, pickup)
	require.NoError(t, err)
	d, err := time.Parse(time.RFC3339, dropoff)
	require.NoError(t, err)
	s, err := New(p, d)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvertedInterval(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := New(at, at)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(at, at.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(time.Time{}, at)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewNormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	pickup := time.Date(2024, 6, 1, 15, 30, 0, 0, ist)
	dropoff := time.Date(2024, 6, 1, 23, 30, 0, 0, ist)

	s, err := New(pickup, dropoff)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, s.PickupAt.Location())
	assert.Equal(t, time.UTC, s.DropoffAt.Location())
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), s.PickupAt)
	assert.Equal(t, 8*time.Hour, s.Duration())
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := mustSlot(t, "2024-06-01T10:00:00Z", "2024-06-01T14:00:00Z")

	cases := []struct {
		name    string
		other   Slot
		overlap bool
	}{
		{"back to back after", mustSlot(t, "2024-06-01T14:00:00Z", "2024-06-01T18:00:00Z"), false},
		{"back to back before", mustSlot(t, "2024-06-01T06:00:00Z", "2024-06-01T10:00:00Z"), false},
		{"one minute into the end", mustSlot(t, "2024-06-01T13:59:00Z", "2024-06-01T18:00:00Z"), true},
		{"fully inside", mustSlot(t, "2024-06-01T11:00:00Z", "2024-06-01T12:00:00Z"), true},
		{"fully covering", mustSlot(t, "2024-06-01T08:00:00Z", "2024-06-01T20:00:00Z"), true},
		{"identical", base, true},
		{"disjoint later", mustSlot(t, "2024-06-02T10:00:00Z", "2024-06-02T14:00:00Z"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, base.Overlaps(tc.other))
			assert.Equal(t, tc.overlap, tc.other.Overlaps(base))
		})
	}
}

func TestContainsExcludesDropoff(t *testing.T) {
	s := mustSlot(t, "2024-06-01T10:00:00Z", "2024-06-01T14:00:00Z")

	assert.True(t, s.Contains(s.PickupAt))
	assert.True(t, s.Contains(s.PickupAt.Add(time.Hour)))
	assert.False(t, s.Contains(s.DropoffAt))
	assert.False(t, s.Contains(s.PickupAt.Add(-time.Second)))
}

func TestBillableDaysRoundsUp(t *testing.T) {
	cases := []struct {
		name     string
		duration time.Duration
		days     int64
	}{
		{"four hours", 4 * time.Hour, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"one day one hour", 25 * time.Hour, 2},
		{"two days", 48 * time.Hour, 2},
		{"two days one minute", 48*time.Hour + time.Minute, 3},
	}
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(start, start.Add(tc.duration))
			require.NoError(t, err)
			assert.Equal(t, tc.days, s.BillableDays())
		})
	}
}
