package ledger

import (
	"context"
	"errors"
	"time"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("ledger: transaction not found")
	ErrBookingRequired = errors.New("ledger: booking id required")
	ErrEmptyAmount     = errors.New("ledger: amount must be positive")
)

type TransactionID string

type Kind string

const (
	KindRental  Kind = "rental"
	KindLateFee Kind = "late_fee"
)

// Transaction is an immutable ledger line written when a booking settles.
// Balance math belongs to downstream consumers; this package only records.
type Transaction struct {
	ID        TransactionID
	BookingID string
	CarID     car.ID
	RenterID  string
	OwnerID   car.OwnerID
	Kind      Kind
	Amount    money.Money
	Method    string
	CreatedAt time.Time
}

type Repository interface {
	Append(ctx context.Context, tx Transaction) error
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)
}

func NewTransaction(id TransactionID, bookingID string, carID car.ID, renterID string, ownerID car.OwnerID, kind Kind, amount money.Money, method string, now time.Time) (Transaction, error) {
	if bookingID == "" {
		return Transaction{}, ErrBookingRequired
	}
	if !amount.IsPositive() {
		return Transaction{}, ErrEmptyAmount
	}
	return Transaction{
		ID:        id,
		BookingID: bookingID,
		CarID:     carID,
		RenterID:  renterID,
		OwnerID:   ownerID,
		Kind:      kind,
		Amount:    amount,
		Method:    method,
		CreatedAt: now.UTC(),
	}, nil
}
