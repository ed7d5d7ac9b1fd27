package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/search"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/storage"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const appName = "weather-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg, appName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
	log.Info("shut down")
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	// Durable storage for favorites and settings.
	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer kv.Close()

	favs, err := favorites.Load(ctx, kv, log.With("component", "favorites"))
	if err != nil {
		return err
	}
	prefs, err := settings.Load(ctx, kv, log.With("component", "settings"))
	if err != nil {
		return err
	}

	// Upstream gateway with resilience (rate limit + backoff + circuit breaker).
	httpCfg := providers.HTTPClientConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff: providers.DefaultBackoff,
		Limiter: providers.NewLimiter(cfg.UpstreamRPS, cfg.UpstreamBurst),
	}
	gateway, err := providers.New(cfg.Provider, httpCfg, cfg.OpenWeatherAPIKey, cfg.WeatherAPIKey)
	if err != nil {
		return err
	}

	service := weather.NewService(store.NewMemoryStore(), gateway, log.With("component", "weather"))

	sched := scheduler.New(service, scheduler.RefreshInterval, log.With("component", "scheduler"))
	sessions := search.NewRegistry(service, cfg.SearchLimit, cfg.SearchSessionTTL, log.With("component", "search"))
	if err := sched.Every(time.Minute, func() { sessions.Expire(time.Now()) }); err != nil {
		return fmt.Errorf("schedule session expiry: %w", err)
	}

	dash := dashboard.New(service, favs, prefs, sched, log.With("component", "dashboard"))
	if err := dash.Start(); err != nil {
		return fmt.Errorf("track favorites: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  appName,
			"provider": gateway.Name(),
		})
	})

	httpapi.RegisterRoutes(app, dash, sessions)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port, "provider", gateway.Name(), "storage", cfg.Storage.Driver)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	return nil
}
