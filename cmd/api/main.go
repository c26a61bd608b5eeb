package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/medfinder-backend/api/routes"
	"github.com/angelmondragon/medfinder-backend/internal/auth"
	"github.com/angelmondragon/medfinder-backend/internal/medicines"
	"github.com/angelmondragon/medfinder-backend/internal/pharmacies"
	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/internal/reservations"
	"github.com/angelmondragon/medfinder-backend/internal/seed"
	"github.com/angelmondragon/medfinder-backend/internal/stock"
	"github.com/angelmondragon/medfinder-backend/internal/users"
	"github.com/angelmondragon/medfinder-backend/pkg/auth/session"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	"github.com/angelmondragon/medfinder-backend/pkg/db"
	"github.com/angelmondragon/medfinder-backend/pkg/env"
	"github.com/angelmondragon/medfinder-backend/pkg/instance"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/metrics"
	"github.com/angelmondragon/medfinder-backend/pkg/migrate"
	"github.com/angelmondragon/medfinder-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.Seed {
		seeder, err := seed.NewSeeder(dbClient, cfg.Password, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create seeder", err)
			os.Exit(1)
		}
		if err := seeder.Run(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed database", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; rate limiting, idempotency and session revocation disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	hub := realtime.NewHub(func(eventType string) {
		ledgerMetrics.IncEvent(eventType, "dropped")
	})

	var (
		sink  realtime.Sink
		relay *realtime.Relay
	)
	if redisClient != nil {
		redisSink, err := realtime.NewRedisSink(redisClient, cfg.Realtime.Channel)
		if err != nil {
			logg.Error(context.Background(), "failed to create realtime sink", err)
			os.Exit(1)
		}
		sink = redisSink
		relay, err = realtime.NewRelay(redisClient, cfg.Realtime.Channel, hub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create realtime relay", err)
			os.Exit(1)
		}
	} else {
		sink = realtime.NewHubSink(hub)
	}

	publisher, err := realtime.NewPublisher(sink, logg, ledgerMetrics, cfg.Realtime.QueueSize, cfg.Realtime.PublishTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime publisher", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	authParams := auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}
	deps := routes.Dependencies{
		DB:       dbClient,
		Hub:      hub,
		Gatherer: registry,
	}
	if redisClient != nil {
		sessionManager, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(context.Background(), "failed to create session manager", err)
			os.Exit(1)
		}
		authParams.SessionManager = sessionManager
		deps.Sessions = sessionManager
		deps.Redis = redisClient
	}

	if deps.Auth, err = auth.NewService(authParams); err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	if deps.Register, err = auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
	}); err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}
	if deps.Medicines, err = medicines.NewService(medicines.NewRepository(dbClient.DB())); err != nil {
		logg.Error(context.Background(), "failed to create medicines service", err)
		os.Exit(1)
	}
	if deps.Pharmacies, err = pharmacies.NewService(pharmacies.NewRepository(dbClient.DB())); err != nil {
		logg.Error(context.Background(), "failed to create pharmacies service", err)
		os.Exit(1)
	}
	stockRepo := stock.NewRepository(dbClient.DB())
	if deps.Stock, err = stock.NewService(stock.ServiceParams{
		Repo:     stockRepo,
		Notifier: publisher,
		Metrics:  ledgerMetrics,
		Logger:   logg,
	}); err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}
	if deps.Reservations, err = reservations.NewService(reservations.ServiceParams{
		TxRunner:  dbClient,
		Repo:      reservations.NewRepository(dbClient.DB()),
		StockRepo: stockRepo,
		Notifier:  publisher,
		Metrics:   ledgerMetrics,
		Logger:    logg,
	}); err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get(cfg.App.Port, "PORT")

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	// No WriteTimeout: the stock stream holds responses open.
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return publisher.Run(groupCtx)
	})
	if relay != nil {
		group.Go(func() error {
			return relay.Run(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := group.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	closeErr := dbClient.Close()
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}

	if err := multierr.Combine(runErr, closeErr); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
