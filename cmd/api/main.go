// Package main is the entry point for the trip itinerary API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-itinerary/internal/config"
	"github.com/pkordes/trip-itinerary/internal/handler"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/middleware"
	"github.com/pkordes/trip-itinerary/internal/oracle"
	"github.com/pkordes/trip-itinerary/internal/repo"
	"github.com/pkordes/trip-itinerary/internal/service"
	"github.com/pkordes/trip-itinerary/migrations"
)

// oracleClient is everything the engine asks of the external oracle.
type oracleClient interface {
	itinerary.RecommendationOracle
	itinerary.JudgmentOracle
	itinerary.DateParser
}

// stores holds the repos of the selected backend.
type stores struct {
	trips         repo.TripRepo
	confirmations repo.ConfirmationRepo
	inspirations  repo.InspirationRepo
	close         func()
}

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer st.close()
	slog.Info("store ready", "backend", cfg.StoreBackend)

	// --- Oracle and engine ------------------------------------------------
	// Without ORACLE_URL every engine call takes its deterministic fallback.
	var orc oracleClient = oracle.Disabled{}
	if cfg.OracleURL != "" {
		orc = oracle.New(oracle.Config{
			Endpoint:          cfg.OracleURL,
			APIKey:            cfg.OracleAPIKey,
			Model:             cfg.OracleModel,
			RequestsPerSecond: cfg.OracleRPS,
		})
		slog.Info("oracle enabled", "model", cfg.OracleModel, "timeout", cfg.OracleTimeout)
	} else {
		slog.Warn("ORACLE_URL not set; itinerary engine runs on fallbacks only")
	}

	arranger := itinerary.NewArranger(orc, logger)
	regenerator := itinerary.NewRegenerator(orc, logger, itinerary.NewActivityID)
	duplicates := itinerary.NewDuplicateFilter(orc, logger, itinerary.DefaultDuplicateSample)
	engineCfg := service.ItineraryConfig{
		OracleTimeout: cfg.OracleTimeout,
		Seed:          cfg.RegenSeed,
		Policy:        itinerary.FixedPinned,
	}

	// --- Services ---------------------------------------------------------
	trips := service.NewTripService(st.trips, st.confirmations)
	itin := service.NewItineraryService(st.trips, st.inspirations, arranger, regenerator, engineCfg)
	confirmations := service.NewConfirmationService(st.confirmations, st.trips, duplicates, arranger, orc, engineCfg)
	inspirations := service.NewInspirationService(st.inspirations)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(trips, itin, confirmations, inspirations)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Oracle-backed endpoints may run up to OracleTimeout, so the write
	// timeout leaves room for it on top of the store round trips.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OracleTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStores connects to the configured backend. Postgres is migrated to the
// latest schema before any request is served.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		// New() does not open connections immediately; Ping verifies the DB is
		// reachable before accepting traffic.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("ping: %w", err)
		}
		if err := migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		return stores{
			trips:         repo.NewTripRepo(pool),
			confirmations: repo.NewConfirmationRepo(pool),
			inspirations:  repo.NewInspirationRepo(pool),
			close:         pool.Close,
		}, nil

	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return stores{}, fmt.Errorf("create firestore client: %w", err)
		}
		fs := repo.NewFirestoreStore(client)
		return stores{
			trips:         fs.Trips(),
			confirmations: fs.Confirmations(),
			inspirations:  fs.Inspirations(),
			close: func() {
				if err := client.Close(); err != nil {
					slog.Warn("close firestore client", "error", err)
				}
			},
		}, nil

	default:
		slog.Warn("using the in-memory store; data is lost on restart")
		mem := repo.NewMemoryStore()
		return stores{
			trips:         mem.Trips(),
			confirmations: mem.Confirmations(),
			inspirations:  mem.Inspirations(),
			close:         func() {},
		}, nil
	}
}

// migrate applies the embedded goose migrations through a database/sql view
// of the pool. The view is not closed; the pool owns its connections.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
