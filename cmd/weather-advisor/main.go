package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/weather-advisor/internal/advisor"
	httpapi "github.com/i474232898/weather-advisor/internal/api/http"
	"github.com/i474232898/weather-advisor/internal/config"
	"github.com/i474232898/weather-advisor/internal/geocode"
	"github.com/i474232898/weather-advisor/internal/llm"
	"github.com/i474232898/weather-advisor/internal/memory"
	"github.com/i474232898/weather-advisor/internal/scheduler"
	"github.com/i474232898/weather-advisor/internal/store"
	"github.com/i474232898/weather-advisor/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Short-lived weather cache plus the long-lived historical cache for
	// day-over-day comparisons.
	weatherCache := store.New[weather.Snapshot](cfg.WeatherCacheTTL)
	historicalCache := store.New[weather.YesterdayConditions](cfg.HistoricalCacheTTL)

	fetcher := weather.NewFetcher(httpClient, cfg.OpenWeatherAPIKey, weatherCache, historicalCache)
	locator := geocode.NewClient(httpClient, cfg.OpenCageAPIKey)

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.LLMModel,
		Referer: cfg.AppURL,
		Timeout: cfg.LLMTimeout,
	})

	sessions := memory.NewStore()

	// Core pipeline service.
	service := advisor.NewService(fetcher, llmClient, sessions)

	// Optional cache prewarm for configured home locations.
	sched := scheduler.New(cfg.PrewarmLocations, cfg.PrewarmInterval, fetcher)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second, // answers wait on the LLM call
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-advisor",
			"env":     cfg.AppEnv,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, locator)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
