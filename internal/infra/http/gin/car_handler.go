package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	carsapp "driveshare/internal/app/handlers/cars"
	"driveshare/internal/app/queries"
)

type CarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type carPayload struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year"`
	Plate        string `json:"plate"`
	FuelType     string `json:"fuel_type"`
	Transmission string `json:"transmission"`
	Seats        int    `json:"seats" binding:"required"`
	PricePerDay  int64  `json:"price_per_day" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	Area         string `json:"area"`
	Address      string `json:"address"`
}

type createCarRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	carPayload
}

func (h CarHandler) Create(c *gin.Context) {
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := carsapp.CreateCarCommand{
		CommandID:    uuid.NewString(),
		OwnerID:      req.OwnerID,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Plate:        req.Plate,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		PricePerDay:  req.PricePerDay,
		City:         req.City,
		State:        req.State,
		Area:         req.Area,
		Address:      req.Address,
	}
	result, err := commands.Dispatch[carsapp.CreateCarCommand, *carsapp.CreateCarResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CarHandler) Update(c *gin.Context) {
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := carsapp.UpdateCarCommand{
		CarID:        c.Param("id"),
		OwnerID:      req.OwnerID,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		PricePerDay:  req.PricePerDay,
		City:         req.City,
		State:        req.State,
		Area:         req.Area,
		Address:      req.Address,
	}
	result, err := commands.Dispatch[carsapp.UpdateCarCommand, *carsapp.UpdateCarResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type toggleAvailabilityRequest struct {
	OwnerID   string `json:"owner_id" binding:"required"`
	Available *bool  `json:"available" binding:"required"`
}

func (h CarHandler) ToggleAvailability(c *gin.Context) {
	var req toggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := carsapp.ToggleAvailabilityCommand{
		CarID:     c.Param("id"),
		OwnerID:   req.OwnerID,
		Available: *req.Available,
	}
	result, err := commands.Dispatch[carsapp.ToggleAvailabilityCommand, *carsapp.ToggleAvailabilityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type removeCarRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

func (h CarHandler) Remove(c *gin.Context) {
	var req removeCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := carsapp.RemoveCarCommand{CarID: c.Param("id"), OwnerID: req.OwnerID}
	result, err := commands.Dispatch[carsapp.RemoveCarCommand, *carsapp.RemoveCarResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CarHandler) Get(c *gin.Context) {
	q := carsapp.GetCarQuery{CarID: c.Param("id")}
	result, err := queries.Ask[carsapp.GetCarQuery, dto.CarView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CarHandler) OwnerCars(c *gin.Context) {
	q := carsapp.OwnerCarsQuery{OwnerID: c.Param("id")}
	result, err := queries.Ask[carsapp.OwnerCarsQuery, dto.CarCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CarHandler) Search(c *gin.Context) {
	q := carsapp.SearchCarsQuery{
		City:         c.Query("city"),
		Transmission: c.Query("transmission"),
		FuelType:     c.Query("fuel_type"),
		MinSeats:     queryInt(c, "min_seats"),
		MaxDailyRate: int64(queryInt(c, "max_daily_rate")),
		Sort:         c.Query("sort"),
		Limit:        queryInt(c, "limit"),
		Offset:       queryInt(c, "offset"),
	}
	if raw := c.Query("pickup_at"); raw != "" {
		pickupAt, dropoffAt, ok := parseInterval(c)
		if !ok {
			return
		}
		q.PickupAt = pickupAt
		q.DropoffAt = dropoffAt
	}
	result, err := queries.Ask[carsapp.SearchCarsQuery, dto.CarCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type priceCapRequest struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model"`
	Transmission string `json:"transmission"`
	Seats        int    `json:"seats"`
	Year         int    `json:"year"`
}

func (h CarHandler) PriceCap(c *gin.Context) {
	var req priceCapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := carsapp.PriceCapQuery{
		Brand:        req.Brand,
		Model:        req.Model,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		Year:         req.Year,
	}
	result, err := queries.Ask[carsapp.PriceCapQuery, dto.PriceCapView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func queryInt(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

var _ CarHTTP = CarHandler{}
