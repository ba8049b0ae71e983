package booking

import (
	"time"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/events"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

type SlotPayload struct {
	PickupAt  time.Time `json:"pickup_at"`
	DropoffAt time.Time `json:"dropoff_at"`
}

func slotPayload(s timeslot.Slot) SlotPayload {
	return SlotPayload{PickupAt: s.PickupAt, DropoffAt: s.DropoffAt}
}

type BookingConfirmed struct {
	events.Base
	CarID    car.ID      `json:"car_id"`
	RenterID string      `json:"renter_id"`
	OwnerID  car.OwnerID `json:"owner_id"`
	Slot     SlotPayload `json:"slot"`
	Total    money.Money `json:"total"`
}

type BookingCancelled struct {
	events.Base
	CarID    car.ID `json:"car_id"`
	RenterID string `json:"renter_id"`
}

type BookingCompleted struct {
	events.Base
	CarID    car.ID      `json:"car_id"`
	RenterID string      `json:"renter_id"`
	OwnerID  car.OwnerID `json:"owner_id"`
	Total    money.Money `json:"total"`
	LateFee  money.Money `json:"late_fee"`
}
