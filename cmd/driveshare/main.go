package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"driveshare/internal/app/commands"
	availabilityapp "driveshare/internal/app/handlers/availability"
	bookingapp "driveshare/internal/app/handlers/booking"
	carsapp "driveshare/internal/app/handlers/cars"
	usersapp "driveshare/internal/app/handlers/users"
	"driveshare/internal/app/middleware"
	appoutbox "driveshare/internal/app/outbox"
	"driveshare/internal/app/policies"
	"driveshare/internal/app/queries"
	"driveshare/internal/app/uow"
	"driveshare/internal/infra/broker/kafka"
	"driveshare/internal/infra/config"
	mongodb "driveshare/internal/infra/db/mongo"
	ginserver "driveshare/internal/infra/http/gin"
	"driveshare/internal/infra/obs"
	infraoutbox "driveshare/internal/infra/outbox"
	infrapricing "driveshare/internal/infra/pricing"
	"driveshare/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: app.healthChecks,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close(shutdownCtx, logger)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	healthChecks map[string]func() error
	worker       *infraoutbox.Worker

	mongoClient *mongodb.Client
	producer    *kafka.Producer
}

type storageSet struct {
	uowFactory  uow.Factory
	outboxStore appoutbox.Outbox
	workerStore infraoutbox.Store
	idStore     middleware.IdempotencyStore
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{healthChecks: map[string]func() error{}}

	storage, err := app.buildStorage(cfg)
	if err != nil {
		return nil, err
	}

	capPolicy := infrapricing.NewCapPolicy(time.Now)

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	registerCommandHandlers(commandBus, storage, capPolicy)
	registerQueryHandlers(queryBus, storage, capPolicy)

	commandsChained := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(storage.idStore, nil),
		middleware.Transaction(storage.uowFactory, nil),
		middleware.OutboxFlush(storage.outboxStore),
	)
	queriesChained := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{Commands: commandsChained, Queries: queriesChained},
		Car:     ginserver.CarHandler{Commands: commandsChained, Queries: queriesChained},
		User:    ginserver.UserHandler{Commands: commandsChained, Queries: queriesChained},
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		app.worker = &infraoutbox.Worker{
			Store:       storage.workerStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	} else {
		logger.Warn("KAFKA_BROKERS empty, outbox events will not be published")
	}

	return app, nil
}

func (a *application) buildStorage(cfg config.Config) (storageSet, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storageSet{}, err
		}
		a.mongoClient = client
		a.healthChecks["mongo"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		store := infraoutbox.NewMongoStore(client.DB)
		return storageSet{
			uowFactory: mongodb.Factory{
				DB:          client.DB,
				CarRepo:     mongodb.NewCarRepository(client.DB),
				BookingRepo: mongodb.NewBookingRepository(client.DB),
				UserRepo:    mongodb.NewUserRepository(client.DB),
				LedgerRepo:  mongodb.NewLedgerRepository(client.DB),
			},
			outboxStore: store,
			workerStore: store,
			idStore:     mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
		}, nil
	}

	outboxStore := memory.NewOutbox()
	return storageSet{
		uowFactory: memory.Factory{
			CarRepo:     memory.NewCarRepository(),
			BookingRepo: memory.NewBookingRepository(),
			UserRepo:    memory.NewUserRepository(),
			LedgerRepo:  memory.NewLedgerRepository(),
		},
		outboxStore: outboxStore,
		workerStore: outboxStore,
		idStore:     memory.NewIdempotencyStore(cfg.IdempotencyTTL),
	}, nil
}

func registerCommandHandlers(bus *commands.InMemoryBus, storage storageSet, capPolicy policies.PriceCapPort) {
	encoder := appoutbox.JSONEventEncoder{}

	commands.RegisterHandler(bus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: storage.uowFactory,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: storage.uowFactory,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		UoWFactory: storage.uowFactory,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, carsapp.CreateCarCommand{}.Key(), &carsapp.CreateCarHandler{
		UoWFactory: storage.uowFactory,
		PriceCap:   capPolicy,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, carsapp.UpdateCarCommand{}.Key(), &carsapp.UpdateCarHandler{
		UoWFactory: storage.uowFactory,
		PriceCap:   capPolicy,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, carsapp.ToggleAvailabilityCommand{}.Key(), &carsapp.ToggleAvailabilityHandler{
		UoWFactory: storage.uowFactory,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, carsapp.RemoveCarCommand{}.Key(), &carsapp.RemoveCarHandler{
		UoWFactory: storage.uowFactory,
		Outbox:     storage.outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(bus, usersapp.RegisterUserCommand{}.Key(), &usersapp.RegisterUserHandler{
		UoWFactory: storage.uowFactory,
	})
}

func registerQueryHandlers(bus *queries.InMemoryBus, storage storageSet, capPolicy policies.PriceCapPort) {
	queries.RegisterHandler(bus, bookingapp.QuoteQuery{}.Key(), &bookingapp.QuoteHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, bookingapp.RenterBookingsQuery{}.Key(), &bookingapp.RenterBookingsHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, bookingapp.OwnerBookingsQuery{}.Key(), &bookingapp.OwnerBookingsHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, carsapp.GetCarQuery{}.Key(), &carsapp.GetCarHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, carsapp.OwnerCarsQuery{}.Key(), &carsapp.OwnerCarsHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, carsapp.SearchCarsQuery{}.Key(), &carsapp.SearchCarsHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, carsapp.PriceCapQuery{}.Key(), &carsapp.PriceCapHandler{
		PriceCap: capPolicy,
	})
	queries.RegisterHandler(bus, usersapp.GetUserQuery{}.Key(), &usersapp.GetUserHandler{
		UoWFactory: storage.uowFactory,
	})
	queries.RegisterHandler(bus, usersapp.UserTransactionsQuery{}.Key(), &usersapp.UserTransactionsHandler{
		UoWFactory: storage.uowFactory,
	})
}

func (a *application) close(ctx context.Context, logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Close(ctx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
