package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"driveshare/internal/infra/config"
	"driveshare/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	Quote(c *gin.Context)
	Availability(c *gin.Context)
	RenterBookings(c *gin.Context)
	OwnerBookings(c *gin.Context)
}

type CarHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	ToggleAvailability(c *gin.Context)
	Remove(c *gin.Context)
	Get(c *gin.Context)
	OwnerCars(c *gin.Context)
	Search(c *gin.Context)
	PriceCap(c *gin.Context)
}

type UserHTTP interface {
	Register(c *gin.Context)
	Get(c *gin.Context)
	Transactions(c *gin.Context)
}

type Handlers struct {
	Booking BookingHTTP
	Car     CarHTTP
	User    UserHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.User != nil {
		api.POST("/users", h.User.Register)
		api.GET("/users/:id", h.User.Get)
		api.GET("/users/:id/transactions", h.User.Transactions)
	}
	if h.Car != nil {
		api.GET("/cars", h.Car.Search)
		api.POST("/cars", h.Car.Create)
		api.POST("/cars/price-cap", h.Car.PriceCap)
		api.GET("/cars/:id", h.Car.Get)
		api.PUT("/cars/:id", h.Car.Update)
		api.POST("/cars/:id/availability", h.Car.ToggleAvailability)
		api.DELETE("/cars/:id", h.Car.Remove)
		api.GET("/owners/:id/cars", h.Car.OwnerCars)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/quote", h.Booking.Quote)
		api.GET("/cars/:id/availability", h.Booking.Availability)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.GET("/renters/:id/bookings", h.Booking.RenterBookings)
		api.GET("/owners/:id/bookings", h.Booking.OwnerBookings)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
