package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-advisor/internal/weather"
)

// AppConfig holds everything read from the environment. API keys are not
// required at load time; their absence is surfaced as a configuration error
// by the route that needs them.
type AppConfig struct {
	OpenCageAPIKey    string
	OpenWeatherAPIKey string
	OpenRouterAPIKey  string

	// AppURL is sent as the HTTP referer on LLM requests.
	AppURL string
	AppEnv string

	LLMModel   string
	LLMTimeout time.Duration

	WeatherCacheTTL    time.Duration
	HistoricalCacheTTL time.Duration

	// Locations to keep warm in the weather cache; empty disables prewarming.
	PrewarmLocations []weather.Location
	PrewarmInterval  time.Duration

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenCageAPIKey = os.Getenv("OPENCAGE_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")

	cfg.AppURL = getenvDefault("APP_URL", "http://localhost:8080")
	cfg.AppEnv = getenvDefault("APP_ENV", "development")
	cfg.LLMModel = getenvDefault("LLM_MODEL", "google/gemini-2.0-flash-exp:free")

	var err error
	if cfg.LLMTimeout, err = getenvDuration("LLM_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = getenvDuration("WEATHER_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HistoricalCacheTTL, err = getenvDuration("HISTORICAL_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PrewarmInterval, err = getenvDuration("PREWARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	locs, err := loadPrewarmLocations()
	if err != nil {
		return nil, err
	}
	cfg.PrewarmLocations = locs

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// loadPrewarmLocations parses the optional semicolon-separated list of
// "City, Country" entries; a missing country defaults to United States.
func loadPrewarmLocations() ([]weather.Location, error) {
	raw := os.Getenv("PREWARM_LOCATIONS")
	if raw == "" {
		return nil, nil
	}

	var locs []weather.Location
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		loc := weather.ParseLocation(entry)
		if loc.City == "" {
			return nil, fmt.Errorf("invalid prewarm location entry %q", entry)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
