package dto

import (
	domainbooking "driveshare/internal/domain/booking"
	domainpricing "driveshare/internal/domain/pricing"
	"driveshare/internal/domain/shared/timeslot"
)

type QuoteView struct {
	CarID        string   `json:"car_id"`
	BillableDays int64    `json:"billable_days"`
	PricePerDay  MoneyDTO `json:"price_per_day"`
	TotalAmount  MoneyDTO `json:"total_amount"`
}

func MapQuote(carID string, q domainbooking.Quote) QuoteView {
	return QuoteView{
		CarID:        carID,
		BillableDays: q.BillableDays,
		PricePerDay:  MapMoney(q.PricePerDay),
		TotalAmount:  MapMoney(q.Total),
	}
}

type AvailabilityView struct {
	CarID     string        `json:"car_id"`
	Available bool          `json:"available"`
	Conflicts []IntervalDTO `json:"conflicts"`
}

func MapAvailability(carID string, available bool, conflicts []timeslot.Slot) AvailabilityView {
	intervals := make([]IntervalDTO, 0, len(conflicts))
	for _, s := range conflicts {
		intervals = append(intervals, IntervalDTO{PickupAt: s.PickupAt, DropoffAt: s.DropoffAt})
	}
	return AvailabilityView{CarID: carID, Available: available, Conflicts: intervals}
}

type PriceCapView struct {
	Recommended MoneyDTO `json:"recommended"`
	Max         MoneyDTO `json:"max"`
}

func MapPriceCap(cap domainpricing.PriceCap) PriceCapView {
	return PriceCapView{
		Recommended: MapMoney(cap.Recommended),
		Max:         MapMoney(cap.Max),
	}
}
