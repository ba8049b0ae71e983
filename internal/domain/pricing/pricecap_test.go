package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
)

const capYear = 2024

func TestComputeMaxPricePremiumSevenSeater(t *testing.T) {
	attrs := VehicleAttrs{
		Brand:        "Toyota",
		Model:        "Fortuner",
		Transmission: car.TransmissionAutomatic,
		Seats:        7,
		Year:         capYear,
	}
	cap := ComputeMaxPrice(attrs, capYear)

	recommended := int64(math.Floor(8000 * 1.20 * 1.12 * 1.15 * 1.35))
	assert.Equal(t, recommended, cap.Recommended.Amount)
	assert.Equal(t, roundToNearest50(float64(recommended)*1.10), cap.Max.Amount)
	assert.Greater(t, cap.Max.Amount, cap.Recommended.Amount)
	assert.Equal(t, money.DefaultCurrency, cap.Recommended.Currency)
}

func TestComputeMaxPriceIsDeterministic(t *testing.T) {
	attrs := VehicleAttrs{Brand: "Hyundai", Model: "Creta", Transmission: car.TransmissionAutomatic, Seats: 5, Year: 2023}

	first := ComputeMaxPrice(attrs, capYear)
	second := ComputeMaxPrice(attrs, capYear)
	assert.Equal(t, first, second)
}

func TestTierBase(t *testing.T) {
	cases := []struct {
		brand string
		base  int64
	}{
		{"Maruti Suzuki", baseEconomy},
		{"tata", baseEconomy},
		{"Hyundai", baseMid},
		{"Kia", baseMid},
		{"Toyota", basePremium},
		{"Mercedes-Benz", basePremium},
		{"SomeUnknownBrand", baseUnknown},
		{"", baseUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.base, tierBase(tc.brand), "brand %q", tc.brand)
	}
}

func TestSeatAndTransmissionFactors(t *testing.T) {
	assert.Equal(t, 1.20, seatFactor(7))
	assert.Equal(t, 1.20, seatFactor(9))
	assert.Equal(t, 1.15, seatFactor(6))
	assert.Equal(t, 1.05, seatFactor(5))
	assert.Equal(t, 1.00, seatFactor(4))

	assert.Equal(t, 1.12, transmissionFactor(car.TransmissionAutomatic))
	assert.Equal(t, 1.12, transmissionFactor("AUTOMATIC"))
	assert.Equal(t, 1.00, transmissionFactor(car.TransmissionManual))
	assert.Equal(t, 1.00, transmissionFactor(""))
}

func TestAgeFactor(t *testing.T) {
	assert.Equal(t, 1.15, ageFactor(capYear, capYear))
	assert.Equal(t, 1.15, ageFactor(capYear-2, capYear))
	assert.Equal(t, 1.00, ageFactor(capYear-3, capYear))
	assert.Equal(t, 1.00, ageFactor(capYear-5, capYear))
	assert.Equal(t, 0.90, ageFactor(capYear-8, capYear))
	assert.Equal(t, 0.80, ageFactor(capYear-12, capYear))
	// Unknown year is treated as five years old.
	assert.Equal(t, 1.00, ageFactor(0, capYear))
}

func TestModelFactor(t *testing.T) {
	cases := []struct {
		name   string
		brand  string
		model  string
		factor float64
	}{
		{"notable premium suv", "Toyota", "Fortuner Legender", 1.35},
		{"notable mid suv", "Hyundai", "Creta SX", 1.15},
		{"unlisted model", "Hyundai", "i10", 1.00},
		{"hybrid trim bump", "Toyota", "Corolla Hybrid", 1.06},
		{"turbo trim bump", "Hyundai", "i20 Turbo", 1.06},
		{"fronx turbo is its own entry", "Maruti Suzuki", "Fronx Turbo", 1.05},
		{"hybrid on a notable model keeps the model factor", "Honda", "City Hybrid", 1.12},
		{"factor capped", "BMW", "X7", 1.35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.factor, modelFactor(tc.brand, tc.model), 1e-9)
		})
	}
}

func TestRoundToNearest50(t *testing.T) {
	assert.Equal(t, int64(2150), roundToNearest50(2161.5))
	assert.Equal(t, int64(2200), roundToNearest50(2175.0))
	assert.Equal(t, int64(0), roundToNearest50(12.0))
	assert.Equal(t, int64(50), roundToNearest50(30.0))
}

func TestAllows(t *testing.T) {
	cap := PriceCap{Recommended: money.Rupees(3000), Max: money.Rupees(3300)}

	assert.True(t, cap.Allows(money.Rupees(3000)))
	assert.True(t, cap.Allows(money.Rupees(3300)))
	assert.False(t, cap.Allows(money.Rupees(3301)))
}

func TestComputeMaxPriceOldEconomyStaysAboveFloors(t *testing.T) {
	attrs := VehicleAttrs{Brand: "Datsun", Model: "Go", Transmission: car.TransmissionManual, Seats: 4, Year: capYear - 15}
	cap := ComputeMaxPrice(attrs, capYear)

	assert.GreaterOrEqual(t, cap.Recommended.Amount, int64(minRecommended))
	assert.GreaterOrEqual(t, cap.Max.Amount, int64(minMax))
	assert.LessOrEqual(t, cap.Recommended.Amount, cap.Max.Amount)
}
