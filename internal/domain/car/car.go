package car

import (
	"context"
	"errors"
	"strings"
	"time"

	"driveshare/internal/domain/shared/events"
	"driveshare/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("car: not found")
	ErrOwnerRequired    = errors.New("car: owner is required")
	ErrBrandRequired    = errors.New("car: brand is required")
	ErrModelRequired    = errors.New("car: model is required")
	ErrPlateRequired    = errors.New("car: registration plate is required")
	ErrInvalidSeats     = errors.New("car: seats must be at least 2")
	ErrInvalidRate      = errors.New("car: daily rate must be positive")
	ErrInvalidYear      = errors.New("car: year is out of range")
	ErrCityRequired     = errors.New("car: city is required")
	ErrRemoved          = errors.New("car: listing has been removed")
	ErrNotOwned         = errors.New("car: listing belongs to a different owner")
)

type ID string
type OwnerID string

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

type Location struct {
	City    string
	State   string
	Area    string
	Address string
}

func (l Location) Valid() bool {
	return strings.TrimSpace(l.City) != ""
}

// Car is a single owner-listed vehicle. Availability is the owner's
// maintenance flag; booked intervals live on the booking side.
type Car struct {
	ID           ID
	Owner        OwnerID
	Brand        string
	Model        string
	Year         int
	Plate        string
	FuelType     FuelType
	Transmission Transmission
	Seats        int
	PricePerDay  money.Money
	Available    bool
	Location     Location
	Removed      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Car, error)
	Save(ctx context.Context, c *Car) error
	ByOwner(ctx context.Context, owner OwnerID) ([]*Car, error)
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID           ID
	Owner        OwnerID
	Brand        string
	Model        string
	Year         int
	Plate        string
	FuelType     FuelType
	Transmission Transmission
	Seats        int
	PricePerDay  money.Money
	Location     Location
	Now          time.Time
}

func New(params CreateParams) (*Car, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("car: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Brand) == "" {
		return nil, ErrBrandRequired
	}
	if strings.TrimSpace(params.Model) == "" {
		return nil, ErrModelRequired
	}
	if strings.TrimSpace(params.Plate) == "" {
		return nil, ErrPlateRequired
	}
	if params.Seats < 2 {
		return nil, ErrInvalidSeats
	}
	if !params.PricePerDay.IsPositive() {
		return nil, ErrInvalidRate
	}
	if params.Year != 0 && (params.Year < 1980 || params.Year > params.Now.Year()+1) {
		return nil, ErrInvalidYear
	}
	if !params.Location.Valid() {
		return nil, ErrCityRequired
	}
	now := params.Now.UTC()
	c := &Car{
		ID:           params.ID,
		Owner:        params.Owner,
		Brand:        strings.TrimSpace(params.Brand),
		Model:        strings.TrimSpace(params.Model),
		Year:         params.Year,
		Plate:        strings.ToUpper(strings.TrimSpace(params.Plate)),
		FuelType:     params.FuelType,
		Transmission: normalizeTransmission(params.Transmission),
		Seats:        params.Seats,
		PricePerDay:  params.PricePerDay,
		Available:    true,
		Location:     params.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.Record(CarListed{Base: events.Base{Name: "car.listed", Aggregate: string(c.ID), Time: now}, OwnerID: c.Owner, Brand: c.Brand, Model: c.Model, City: c.Location.City, DailyRate: c.PricePerDay})
	return c, nil
}

type UpdateParams struct {
	Brand        string
	Model        string
	Year         int
	FuelType     FuelType
	Transmission Transmission
	Seats        int
	PricePerDay  money.Money
	Location     Location
}

func (c *Car) Update(params UpdateParams, now time.Time) error {
	if c.Removed {
		return ErrRemoved
	}
	if strings.TrimSpace(params.Brand) == "" {
		return ErrBrandRequired
	}
	if strings.TrimSpace(params.Model) == "" {
		return ErrModelRequired
	}
	if params.Seats < 2 {
		return ErrInvalidSeats
	}
	if !params.PricePerDay.IsPositive() {
		return ErrInvalidRate
	}
	if !params.Location.Valid() {
		return ErrCityRequired
	}
	c.Brand = strings.TrimSpace(params.Brand)
	c.Model = strings.TrimSpace(params.Model)
	c.Year = params.Year
	c.FuelType = params.FuelType
	c.Transmission = normalizeTransmission(params.Transmission)
	c.Seats = params.Seats
	c.PricePerDay = params.PricePerDay
	c.Location = params.Location
	c.UpdatedAt = now.UTC()
	c.Record(CarUpdated{Base: events.Base{Name: "car.updated", Aggregate: string(c.ID), Time: c.UpdatedAt}, DailyRate: c.PricePerDay})
	return nil
}

// SetAvailability flips the owner's maintenance flag.
func (c *Car) SetAvailability(available bool, now time.Time) error {
	if c.Removed {
		return ErrRemoved
	}
	if c.Available == available {
		return nil
	}
	c.Available = available
	c.UpdatedAt = now.UTC()
	c.Record(CarAvailabilityChanged{Base: events.Base{Name: "car.availability_changed", Aggregate: string(c.ID), Time: c.UpdatedAt}, Available: available})
	return nil
}

// Remove soft-deletes the listing; the document stays as booking history.
func (c *Car) Remove(now time.Time) error {
	if c.Removed {
		return ErrRemoved
	}
	c.Removed = true
	c.Available = false
	c.UpdatedAt = now.UTC()
	c.Record(CarRemoved{Base: events.Base{Name: "car.removed", Aggregate: string(c.ID), Time: c.UpdatedAt}})
	return nil
}

// Bookable reports whether the listing can take new bookings at all.
func (c *Car) Bookable() bool {
	return !c.Removed && c.Available
}

func normalizeTransmission(t Transmission) Transmission {
	if strings.EqualFold(string(t), string(TransmissionAutomatic)) {
		return TransmissionAutomatic
	}
	return TransmissionManual
}
