package dto

import (
	"time"

	domaincar "driveshare/internal/domain/car"
)

type LocationDTO struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Area    string `json:"area,omitempty"`
	Address string `json:"address,omitempty"`
}

type CarView struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"owner_id"`
	Brand        string      `json:"brand"`
	Model        string      `json:"model"`
	Year         int         `json:"year,omitempty"`
	Plate        string      `json:"plate"`
	FuelType     string      `json:"fuel_type"`
	Transmission string      `json:"transmission"`
	Seats        int         `json:"seats"`
	PricePerDay  MoneyDTO    `json:"price_per_day"`
	Available    bool        `json:"available"`
	Location     LocationDTO `json:"location"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type CarCatalog struct {
	Items  []CarView `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func MapCar(c *domaincar.Car) CarView {
	return CarView{
		ID:           string(c.ID),
		OwnerID:      string(c.Owner),
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Plate:        c.Plate,
		FuelType:     string(c.FuelType),
		Transmission: string(c.Transmission),
		Seats:        c.Seats,
		PricePerDay:  MapMoney(c.PricePerDay),
		Available:    c.Available,
		Location: LocationDTO{
			City:    c.Location.City,
			State:   c.Location.State,
			Area:    c.Location.Area,
			Address: c.Location.Address,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func MapCarCatalog(items []*domaincar.Car, total, limit, offset int) CarCatalog {
	views := make([]CarView, 0, len(items))
	for _, c := range items {
		views = append(views, MapCar(c))
	}
	return CarCatalog{Items: views, Total: total, Limit: limit, Offset: offset}
}
