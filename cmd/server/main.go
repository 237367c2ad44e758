package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cep-distance-service/internal/adapters/cache"
	"cep-distance-service/internal/adapters/geocode"
	"cep-distance-service/internal/adapters/routing"
	"cep-distance-service/internal/api"
	"cep-distance-service/internal/config"
	"cep-distance-service/internal/platform/db"
	"cep-distance-service/internal/platform/httpclient"
	"cep-distance-service/internal/platform/logger"
	"cep-distance-service/internal/ports"
	"cep-distance-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, codigo-postal.pt, TomTom) behind ports and starts the HTTP server.
func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	slog.SetDefault(appLog)

	if err := cfg.Validate(); err != nil {
		appLog.Error("invalid configuration", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, dialect, err := openLookupDB(cfg)
	if err != nil {
		appLog.Error("open database", "err", err)
		return 1
	}
	defer sqlDB.Close()

	if err := cache.InitSchema(ctx, sqlDB, dialect); err != nil {
		appLog.Error("init schema", "err", err)
		return 1
	}

	var shared ports.CoordinateStore
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		rs, err := cache.NewRedisCoordinateStore(pingCtx, cfg.RedisAddr, cfg.RedisCoordTTL)
		cancel()
		if err != nil {
			// The shared tier is optional; run with the in-process cache only.
			appLog.Warn("redis unavailable, shared coordinate tier disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer rs.Close()
			shared = rs
		}
	}

	session := httpclient.NewOutbound()

	router, err := routing.NewTomTom(session, cfg.TomTomAPIKey, cfg.TomTomBaseURL, cfg.RoutingTimeout)
	if err != nil {
		appLog.Error("routing provider", "err", err)
		return 1
	}
	geocoder := geocode.NewCodigoPostal(session, cfg.GeocodeBaseURL, cfg.GeocodeTimeout)

	svc := services.NewDistanceService(
		services.NewCoordinateResolver(geocoder, shared, services.CachePolicy{
			Capacity:  cfg.CoordCacheSize,
			AbsentTTL: cfg.AbsentTTL,
		}),
		services.NewRouteResolver(router, services.CachePolicy{
			Capacity:  cfg.RouteCacheSize,
			AbsentTTL: cfg.AbsentTTL,
		}),
		cache.NewSQLLookupCache(sqlDB, dialect),
	)

	// Timeouts leave room for a cold lookup: geocoding plus routing.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(svc, api.RouterOptions{Metrics: cfg.MetricsEnabled}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http listen", "addr", cfg.Addr, "db", dialect.String(), "shared_coords", shared != nil)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("shutdown", "err", err)
			return 1
		}
		return 0
	case err := <-errCh:
		appLog.Error("http server", "err", err)
		return 1
	}
}

// openLookupDB prefers Postgres when DATABASE_URL is set and falls back to
// the local SQLite file.
func openLookupDB(cfg config.Config) (*sql.DB, cache.Dialect, error) {
	if cfg.DatabaseURL != "" {
		d, err := db.Open(cfg.DatabaseURL)
		return d, cache.Postgres, err
	}
	d, err := db.OpenSQLite(cfg.DBPath)
	return d, cache.SQLite, err
}
