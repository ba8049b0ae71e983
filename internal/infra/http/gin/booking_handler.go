package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"driveshare/internal/app/commands"
	availabilityapp "driveshare/internal/app/handlers/availability"
	bookingapp "driveshare/internal/app/handlers/booking"
	"driveshare/internal/app/dto"
	"driveshare/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	CarID         string    `json:"car_id" binding:"required"`
	RenterID      string    `json:"renter_id" binding:"required"`
	PickupAt      time.Time `json:"pickup_at" binding:"required"`
	DropoffAt     time.Time `json:"dropoff_at" binding:"required"`
	PaymentMethod string    `json:"payment_method"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		CarID:           req.CarID,
		RenterID:        req.RenterID,
		PickupAt:        req.PickupAt,
		DropoffAt:       req.DropoffAt,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelBookingRequest struct {
	RenterID string `json:"renter_id" binding:"required"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CancelBookingCommand{
		BookingID: c.Param("id"),
		RenterID:  req.RenterID,
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type completeBookingRequest struct {
	OwnerID    string    `json:"owner_id" binding:"required"`
	ReturnedAt time.Time `json:"returned_at"`
}

func (h BookingHandler) Complete(c *gin.Context) {
	var req completeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CompleteBookingCommand{
		BookingID:  c.Param("id"),
		OwnerID:    req.OwnerID,
		ReturnedAt: req.ReturnedAt,
	}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.CompleteBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Quote(c *gin.Context) {
	carID := c.Query("car_id")
	pickupAt, dropoffAt, ok := parseInterval(c)
	if !ok {
		return
	}
	q := bookingapp.QuoteQuery{CarID: carID, PickupAt: pickupAt, DropoffAt: dropoffAt}
	result, err := queries.Ask[bookingapp.QuoteQuery, dto.QuoteView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Availability(c *gin.Context) {
	pickupAt, dropoffAt, ok := parseInterval(c)
	if !ok {
		return
	}
	q := availabilityapp.CheckAvailabilityQuery{
		CarID:     c.Param("id"),
		PickupAt:  pickupAt,
		DropoffAt: dropoffAt,
	}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) RenterBookings(c *gin.Context) {
	q := bookingapp.RenterBookingsQuery{RenterID: c.Param("id")}
	result, err := queries.Ask[bookingapp.RenterBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) OwnerBookings(c *gin.Context) {
	q := bookingapp.OwnerBookingsQuery{OwnerID: c.Param("id")}
	result, err := queries.Ask[bookingapp.OwnerBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseInterval reads pickup_at/dropoff_at RFC3339 query params.
func parseInterval(c *gin.Context) (time.Time, time.Time, bool) {
	pickupAt, err := time.Parse(time.RFC3339, c.Query("pickup_at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pickup_at: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	dropoffAt, err := time.Parse(time.RFC3339, c.Query("dropoff_at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dropoff_at: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return pickupAt, dropoffAt, true
}

var _ BookingHTTP = BookingHandler{}
