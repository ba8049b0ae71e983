package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

// Timing rules applied to every quote, availability check and booking
// request. Quote and create share this single code path so a quoted
// amount can never diverge from the charged one.
const (
	// MinLeadTime is the minimum gap between "now" and pickup.
	MinLeadTime = 3 * time.Hour
	// MinDuration is the shortest rental the marketplace accepts.
	MinDuration = 4 * time.Hour
	// ReturnGrace is the tolerance after scheduled dropoff before late fees accrue.
	ReturnGrace = 15 * time.Minute
	// CancelCutoff mirrors MinLeadTime on the cancellation side.
	CancelCutoff = 3 * time.Hour

	hoursPerDay = 24
)

var (
	ErrLeadTimeTooShort   = errors.New("booking: pickup must be at least 3 hours from now")
	ErrDurationTooShort   = errors.New("booking: rental must last at least 4 hours")
	ErrCarUnavailable     = errors.New("booking: car is not open for bookings")
	ErrCancelWindowClosed = errors.New("booking: cancellation window has closed")
)

// ConflictError reports the already-booked intervals that collide with a
// requested slot, so callers can render them.
type ConflictError struct {
	CarID     car.ID
	Conflicts []timeslot.Slot
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, s := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("[%s, %s)", s.PickupAt.Format(time.RFC3339), s.DropoffAt.Format(time.RFC3339)))
	}
	return fmt.Sprintf("booking: car %s already booked for %s", e.CarID, strings.Join(parts, ", "))
}

// ValidateRequest applies the timing rules to a requested slot. Interval
// ordering itself is enforced when the slot is constructed.
func ValidateRequest(slot timeslot.Slot, now time.Time) error {
	if slot.PickupAt.Before(now.UTC().Add(MinLeadTime)) {
		return ErrLeadTimeTooShort
	}
	if slot.Duration() < MinDuration {
		return ErrDurationTooShort
	}
	return slot.Validate()
}

// Quote is the priced answer to "what would this interval cost".
// Ephemeral: computed on demand, persisted only as booking fields.
type Quote struct {
	PricePerDay  money.Money
	BillableDays int64
	Total        money.Money
}

// QuoteFor prices a slot at the given daily rate: duration rounded up to
// whole 24h units, minimum one day.
func QuoteFor(rate money.Money, slot timeslot.Slot) Quote {
	days := slot.BillableDays()
	return Quote{
		PricePerDay:  rate,
		BillableDays: days,
		Total:        rate.Multiply(days),
	}
}

// Completion annotates a booking with the late-return outcome.
type Completion struct {
	ReturnedAt  time.Time
	LateMinutes int64
	LateHours   int64
	LateFee     money.Money
}

// LateFeeFor compares the actual return against the scheduled dropoff.
// Returns within the grace period cost nothing; beyond it every started
// hour bills at a 24th of the daily rate.
func LateFeeFor(rate money.Money, scheduledDropoff, actualReturn time.Time) Completion {
	completion := Completion{
		ReturnedAt: actualReturn.UTC(),
		LateFee:    money.Money{Amount: 0, Currency: rate.Currency},
	}
	delta := actualReturn.UTC().Sub(scheduledDropoff.UTC())
	if delta <= ReturnGrace {
		return completion
	}
	completion.LateMinutes = ceilDiv(delta, time.Minute)
	completion.LateHours = ceilDiv(delta, time.Hour)
	completion.LateFee = rate.DivideBy(hoursPerDay).Multiply(completion.LateHours)
	return completion
}

// CancellableAt reports whether a booking starting at pickup may still be
// cancelled at the given instant.
func CancellableAt(pickupAt, now time.Time) bool {
	return now.UTC().Before(pickupAt.UTC().Add(-CancelCutoff))
}

func ceilDiv(d, unit time.Duration) int64 {
	n := int64(d / unit)
	if d%unit != 0 {
		n++
	}
	return n
}
