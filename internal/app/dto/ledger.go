package dto

import (
	"time"

	domainledger "driveshare/internal/domain/ledger"
)

type TransactionView struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	CarID     string    `json:"car_id"`
	RenterID  string    `json:"renter_id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Amount    MoneyDTO  `json:"amount"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionCollection struct {
	Items []TransactionView `json:"items"`
}

func MapTransactions(items []domainledger.Transaction) TransactionCollection {
	views := make([]TransactionView, 0, len(items))
	for _, tx := range items {
		views = append(views, TransactionView{
			ID:        string(tx.ID),
			BookingID: tx.BookingID,
			CarID:     string(tx.CarID),
			RenterID:  tx.RenterID,
			OwnerID:   string(tx.OwnerID),
			Kind:      string(tx.Kind),
			Amount:    MapMoney(tx.Amount),
			Method:    tx.Method,
			CreatedAt: tx.CreatedAt,
		})
	}
	return TransactionCollection{Items: views}
}
