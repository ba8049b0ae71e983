package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "driveshare/internal/app/handlers/booking"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	domainpricing "driveshare/internal/domain/pricing"
	domainuser "driveshare/internal/domain/user"
)

// respondError maps domain errors onto the HTTP surface: rule
// violations are 422, missing aggregates 404, calendar and uniqueness
// collisions 409, actor mismatches 403, anything unknown 500.
func respondError(c *gin.Context, err error) {
	var conflict *domainbooking.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Error(),
			"car_id":    string(conflict.CarID),
			"conflicts": conflictIntervals(conflict),
		})
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed),
		errors.Is(err, domainbooking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case isUnprocessable(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func conflictIntervals(conflict *domainbooking.ConflictError) []gin.H {
	out := make([]gin.H, 0, len(conflict.Conflicts))
	for _, s := range conflict.Conflicts {
		out = append(out, gin.H{"pickup_at": s.PickupAt, "dropoff_at": s.DropoffAt})
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, domaincar.ErrNotFound) ||
		errors.Is(err, domainbooking.ErrNotFound) ||
		errors.Is(err, domainuser.ErrNotFound) ||
		errors.Is(err, domainledger.ErrNotFound) ||
		errors.Is(err, domaincar.ErrRemoved)
}

func isForbidden(err error) bool {
	return errors.Is(err, domaincar.ErrNotOwned) ||
		errors.Is(err, bookingapp.ErrNotBookingRenter) ||
		errors.Is(err, bookingapp.ErrNotBookingOwner)
}

func isUnprocessable(err error) bool {
	if bookingapp.IsValidationError(err) {
		return true
	}
	return errors.Is(err, domainpricing.ErrAboveCap) ||
		errors.Is(err, domaincar.ErrOwnerRequired) ||
		errors.Is(err, domaincar.ErrBrandRequired) ||
		errors.Is(err, domaincar.ErrModelRequired) ||
		errors.Is(err, domaincar.ErrPlateRequired) ||
		errors.Is(err, domaincar.ErrInvalidSeats) ||
		errors.Is(err, domaincar.ErrInvalidRate) ||
		errors.Is(err, domaincar.ErrInvalidYear) ||
		errors.Is(err, domaincar.ErrCityRequired) ||
		errors.Is(err, domainbooking.ErrRenterRequired) ||
		errors.Is(err, domainuser.ErrEmailRequired) ||
		errors.Is(err, domainuser.ErrNameRequired) ||
		errors.Is(err, domainuser.ErrInvalidRole)
}
