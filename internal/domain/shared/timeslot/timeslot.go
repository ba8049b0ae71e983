package timeslot

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("timeslot: dropoff must be strictly after pickup")

// Slot represents a half-open rental interval [PickupAt, DropoffAt).
// Both timestamps are normalized to UTC on construction; a slot ending
// exactly when another begins does not overlap it, so back-to-back
// rentals of the same car are permitted.
type Slot struct {
	PickupAt  time.Time
	DropoffAt time.Time
}

func New(pickupAt, dropoffAt time.Time) (Slot, error) {
	s := Slot{PickupAt: pickupAt.UTC(), DropoffAt: dropoffAt.UTC()}
	if err := s.Validate(); err != nil {
		return Slot{}, err
	}
	return s, nil
}

func (s Slot) Validate() error {
	if s.PickupAt.IsZero() || s.DropoffAt.IsZero() {
		return ErrInvalidInterval
	}
	if !s.DropoffAt.After(s.PickupAt) {
		return ErrInvalidInterval
	}
	return nil
}

func (s Slot) Duration() time.Duration {
	return s.DropoffAt.Sub(s.PickupAt)
}

// Overlaps reports whether two half-open intervals intersect.
func (s Slot) Overlaps(other Slot) bool {
	return s.PickupAt.Before(other.DropoffAt) && other.PickupAt.Before(s.DropoffAt)
}

// Contains reports whether t falls inside the slot.
func (s Slot) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(s.PickupAt) && t.Before(s.DropoffAt)
}

// BillableDays rounds the duration up to whole 24h units, never below one.
func (s Slot) BillableDays() int64 {
	const day = 24 * time.Hour
	dur := s.Duration()
	days := int64(dur / day)
	if dur%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
