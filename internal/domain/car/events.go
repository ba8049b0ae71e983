package car

import (
	"driveshare/internal/domain/shared/events"
	"driveshare/internal/domain/shared/money"
)

type CarListed struct {
	events.Base
	OwnerID   OwnerID     `json:"owner_id"`
	Brand     string      `json:"brand"`
	Model     string      `json:"model"`
	City      string      `json:"city"`
	DailyRate money.Money `json:"daily_rate"`
}

type CarUpdated struct {
	events.Base
	DailyRate money.Money `json:"daily_rate"`
}

type CarAvailabilityChanged struct {
	events.Base
	Available bool `json:"available"`
}

type CarRemoved struct {
	events.Base
}
