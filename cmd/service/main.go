package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-history-service/internal/client"
	"github.com/kjstillabower/weather-history-service/internal/config"
	httphandler "github.com/kjstillabower/weather-history-service/internal/http"
	"github.com/kjstillabower/weather-history-service/internal/lifecycle"
	"github.com/kjstillabower/weather-history-service/internal/observability"
	"github.com/kjstillabower/weather-history-service/internal/service"
	"github.com/kjstillabower/weather-history-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.WeatherAPIKey == "" {
		logger.Warn("OPENWEATHERMAP_API_KEY not set; weather lookups will return CONFIG_ERROR")
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	historyStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("history store", zap.Error(err))
	}

	weatherService := service.NewWeatherService(weatherClient, store.NewInstrumented(historyStore), logger)

	if len(cfg.TrackedZipCodes) > 0 {
		observability.SetTrackedZipCodes(cfg.TrackedZipCodes)
	}

	state := &lifecycle.State{}
	tracker := &httphandler.InFlightTracker{}
	handler := httphandler.NewHandler(weatherService, state, logger)
	router := httphandler.NewRouter(handler, tracker, logger, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.Bool("debug", cfg.Debug),
			zap.String("store_backend", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	state.BeginDrain()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", tracker.Count()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := tracker.WaitForZero(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", tracker.Count()))
	}

	historyStore.Close()

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// openStore selects the history backend. Postgres gets its schema ensured on startup.
func openStore(cfg *config.Config, logger *zap.Logger) (store.HistoryStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendInMemory:
		logger.Info("store backend: in_memory")
		return store.NewMemoryStore(), nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.StoreMaxConns)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("store backend: postgres", zap.Int32("max_conns", cfg.StoreMaxConns))
		return pg, nil
	}
}
