package booking

import (
	"context"
	"errors"
	"time"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/events"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

var (
	ErrNotFound       = errors.New("booking: not found")
	ErrRenterRequired = errors.New("booking: renter id required")
	ErrInvalidState   = errors.New("booking: invalid state transition")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the statuses that block a car's calendar.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Payment struct {
	Method PaymentMethod
	Status PaymentStatus
}

// Booking references one car, one renter and the car's owner (denormalized
// for query convenience). PricePerDay is a snapshot taken at creation time
// and is immune to later listing edits.
type Booking struct {
	ID           ID
	CarID        car.ID
	RenterID     string
	OwnerID      car.OwnerID
	Slot         timeslot.Slot
	PricePerDay  money.Money
	BillableDays int64
	Total        money.Money
	Status       Status
	Payment      Payment
	Completion   *Completion
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.Recorder
}

// Repository persists bookings. InsertIfFree owns the overlap-check-then-
// insert guarantee: two concurrent creates for overlapping slots on the
// same car must not both succeed, and the loser gets a *ConflictError.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	InsertIfFree(ctx context.Context, b *Booking) error
	FindOverlapping(ctx context.Context, carID car.ID, slot timeslot.Slot) ([]*Booking, error)
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID car.OwnerID) ([]*Booking, error)
}

type CreateParams struct {
	ID            ID
	CarID         car.ID
	RenterID      string
	OwnerID       car.OwnerID
	Slot          timeslot.Slot
	PricePerDay   money.Money
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// New builds a confirmed, unpaid booking priced by the quote engine.
func New(params CreateParams) (*Booking, error) {
	if params.RenterID == "" {
		return nil, ErrRenterRequired
	}
	if err := params.Slot.Validate(); err != nil {
		return nil, err
	}
	if !params.PricePerDay.IsPositive() {
		return nil, car.ErrInvalidRate
	}
	quote := QuoteFor(params.PricePerDay, params.Slot)
	method := params.PaymentMethod
	if method == "" {
		method = PaymentCOD
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:           params.ID,
		CarID:        params.CarID,
		RenterID:     params.RenterID,
		OwnerID:      params.OwnerID,
		Slot:         params.Slot,
		PricePerDay:  quote.PricePerDay,
		BillableDays: quote.BillableDays,
		Total:        quote.Total,
		Status:       StatusConfirmed,
		Payment:      Payment{Method: method, Status: PaymentUnpaid},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.Record(BookingConfirmed{
		Base:     events.Base{Name: "booking.confirmed", Aggregate: string(b.ID), Time: now},
		CarID:    b.CarID,
		RenterID: b.RenterID,
		OwnerID:  b.OwnerID,
		Slot:     slotPayload(b.Slot),
		Total:    b.Total,
	})
	return b, nil
}

// Cancel is renter-initiated and time-gated: only confirmed bookings, and
// only while now is more than the cutoff ahead of pickup.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !CancellableAt(b.Slot.PickupAt, now) {
		return ErrCancelWindowClosed
	}
	b.Status = StatusCancelled
	if b.Payment.Status == PaymentPaid {
		b.Payment.Status = PaymentRefunded
	}
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		Base:     events.Base{Name: "booking.cancelled", Aggregate: string(b.ID), Time: b.UpdatedAt},
		CarID:    b.CarID,
		RenterID: b.RenterID,
	})
	return nil
}

// Complete is the owner/operator action at car return. It annotates the
// booking with the late-return outcome and settles the payment; it never
// creates a new record.
func (b *Booking) Complete(actualReturnAt, now time.Time) (Completion, error) {
	if b.Status != StatusConfirmed {
		return Completion{}, ErrInvalidState
	}
	completion := LateFeeFor(b.PricePerDay, b.Slot.DropoffAt, actualReturnAt)
	b.Completion = &completion
	b.Status = StatusCompleted
	b.Payment.Status = PaymentPaid
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{
		Base:     events.Base{Name: "booking.completed", Aggregate: string(b.ID), Time: b.UpdatedAt},
		CarID:    b.CarID,
		RenterID: b.RenterID,
		OwnerID:  b.OwnerID,
		Total:    b.Total,
		LateFee:  completion.LateFee,
	})
	return completion, nil
}
