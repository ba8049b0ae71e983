package pricing

import (
	"errors"
	"math"
	"strings"

	"driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
)

// ErrAboveCap rejects listings priced over the computed maximum.
var ErrAboveCap = errors.New("pricing: daily price exceeds the allowed cap")

// Price cap policy: given a proposed listing's attributes, compute the
// recommended and maximum allowed daily price. Deterministic and free of
// I/O; the listing form and the server-side re-check at submission call
// the same function, so the client cannot bypass the cap.

const (
	baseEconomy = 2000
	baseMid     = 3500
	basePremium = 8000
	baseUnknown = 3000

	minRecommended = 1000
	minMax         = 1500

	maxHeadroom    = 1.10
	modelFactorCap = 1.35
	trimBump       = 1.06
)

var economyBrands = []string{"maruti", "suzuki", "tata", "renault", "datsun", "fiat"}

var midBrands = []string{"hyundai", "honda", "kia", "volkswagen", "skoda", "mahindra", "mg", "ford", "nissan"}

var premiumBrands = []string{"toyota", "bmw", "mercedes", "audi", "jaguar", "land rover", "volvo", "lexus", "porsche"}

// notableModels maps a brand token to substring→factor entries for models
// that rent noticeably above or below the brand baseline. The highest
// matching factor wins. "fronx turbo" is listed explicitly so the generic
// turbo bump does not double-count it.
var notableModels = map[string]map[string]float64{
	"toyota": {
		"fortuner": 1.35,
		"innova":   1.25,
		"camry":    1.30,
		"glanza":   1.02,
	},
	"maruti": {
		"brezza":      1.10,
		"baleno":      1.06,
		"swift":       1.04,
		"fronx turbo": 1.05,
	},
	"suzuki": {
		"brezza":      1.10,
		"baleno":      1.06,
		"swift":       1.04,
		"fronx turbo": 1.05,
	},
	"hyundai": {
		"creta": 1.15,
		"verna": 1.10,
		"venue": 1.06,
	},
	"honda": {
		"city":    1.12,
		"elevate": 1.10,
	},
	"tata": {
		"safari":  1.22,
		"harrier": 1.20,
		"nexon":   1.12,
		"punch":   1.05,
	},
	"mahindra": {
		"thar":    1.30,
		"xuv700":  1.25,
		"scorpio": 1.20,
	},
	"kia": {
		"carnival": 1.30,
		"seltos":   1.15,
	},
	"bmw": {
		"x5": 1.25,
		"x7": 1.35,
	},
	"mercedes": {
		"gls": 1.30,
		"glc": 1.20,
	},
	"audi": {
		"q7": 1.25,
		"q5": 1.18,
	},
}

// VehicleAttrs are the listing attributes the cap is derived from.
type VehicleAttrs struct {
	Brand        string
	Model        string
	Transmission car.Transmission
	Seats        int
	Year         int
}

// PriceCap bounds a listing's daily price.
type PriceCap struct {
	Recommended money.Money
	Max         money.Money
}

// ComputeMaxPrice derives {recommended, max} daily-price bounds from the
// vehicle attributes. currentYear anchors the age factor.
func ComputeMaxPrice(attrs VehicleAttrs, currentYear int) PriceCap {
	base := float64(tierBase(attrs.Brand))
	value := base * seatFactor(attrs.Seats) * transmissionFactor(attrs.Transmission) * ageFactor(attrs.Year, currentYear) * modelFactor(attrs.Brand, attrs.Model)

	recommended := int64(math.Floor(value))
	if recommended < minRecommended {
		recommended = minRecommended
	}
	max := roundToNearest50(float64(recommended) * maxHeadroom)
	if max < minMax {
		max = minMax
	}
	return PriceCap{
		Recommended: money.Rupees(recommended),
		Max:         money.Rupees(max),
	}
}

// Allows reports whether a proposed daily rate fits under the cap.
func (c PriceCap) Allows(rate money.Money) bool {
	return rate.Amount <= c.Max.Amount
}

func tierBase(brand string) int64 {
	b := normalize(brand)
	switch {
	case matchesAny(b, premiumBrands):
		return basePremium
	case matchesAny(b, midBrands):
		return baseMid
	case matchesAny(b, economyBrands):
		return baseEconomy
	default:
		return baseUnknown
	}
}

func seatFactor(seats int) float64 {
	switch {
	case seats >= 7:
		return 1.20
	case seats == 6:
		return 1.15
	case seats == 5:
		return 1.05
	default:
		return 1.00
	}
}

func transmissionFactor(t car.Transmission) float64 {
	if strings.EqualFold(string(t), string(car.TransmissionAutomatic)) {
		return 1.12
	}
	return 1.00
}

func ageFactor(year, currentYear int) float64 {
	age := 5
	if year > 0 {
		age = currentYear - year
	}
	switch {
	case age <= 2:
		return 1.15
	case age <= 5:
		return 1.00
	case age <= 10:
		return 0.90
	default:
		return 0.80
	}
}

func modelFactor(brand, model string) float64 {
	m := normalize(model)
	factor := 1.00

	for token, entries := range notableModels {
		if !strings.Contains(normalize(brand), token) {
			continue
		}
		for substr, f := range entries {
			if strings.Contains(m, substr) && f > factor {
				factor = f
			}
		}
	}

	if strings.Contains(m, "hybrid") && factor < trimBump {
		factor = trimBump
	}
	if strings.Contains(m, "turbo") && !strings.Contains(m, "fronx turbo") && factor < trimBump {
		factor = trimBump
	}
	if factor > modelFactorCap {
		factor = modelFactorCap
	}
	return factor
}

func roundToNearest50(v float64) int64 {
	return int64(math.Round(v/50) * 50)
}

func matchesAny(value string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
