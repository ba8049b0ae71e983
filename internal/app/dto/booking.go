package dto

import (
	"time"

	domainbooking "driveshare/internal/domain/booking"
)

type IntervalDTO struct {
	PickupAt  time.Time `json:"pickup_at"`
	DropoffAt time.Time `json:"dropoff_at"`
}

type CompletionView struct {
	ReturnedAt  time.Time `json:"returned_at"`
	LateMinutes int64     `json:"late_minutes"`
	LateHours   int64     `json:"late_hours"`
	LateFee     MoneyDTO  `json:"late_fee"`
}

type BookingView struct {
	ID            string          `json:"id"`
	CarID         string          `json:"car_id"`
	RenterID      string          `json:"renter_id"`
	OwnerID       string          `json:"owner_id"`
	Slot          IntervalDTO     `json:"slot"`
	PricePerDay   MoneyDTO        `json:"price_per_day"`
	BillableDays  int64           `json:"billable_days"`
	TotalAmount   MoneyDTO        `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Completion    *CompletionView `json:"completion,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:            string(b.ID),
		CarID:         string(b.CarID),
		RenterID:      b.RenterID,
		OwnerID:       string(b.OwnerID),
		Slot:          IntervalDTO{PickupAt: b.Slot.PickupAt, DropoffAt: b.Slot.DropoffAt},
		PricePerDay:   MapMoney(b.PricePerDay),
		BillableDays:  b.BillableDays,
		TotalAmount:   MapMoney(b.Total),
		Status:        string(b.Status),
		PaymentMethod: string(b.Payment.Method),
		PaymentStatus: string(b.Payment.Status),
		CreatedAt:     b.CreatedAt,
	}
	if b.Completion != nil {
		view.Completion = &CompletionView{
			ReturnedAt:  b.Completion.ReturnedAt,
			LateMinutes: b.Completion.LateMinutes,
			LateHours:   b.Completion.LateHours,
			LateFee:     MapMoney(b.Completion.LateFee),
		}
	}
	return view
}

func MapBookingCollection(items []*domainbooking.Booking) BookingCollection {
	views := make([]BookingView, 0, len(items))
	for _, b := range items {
		views = append(views, MapBooking(b))
	}
	return BookingCollection{Items: views}
}
