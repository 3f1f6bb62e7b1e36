// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"farescout-service/internal/ratelimit"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Postgres
	PostgresDSN string

	// Redis (rate limit counters)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MongoDB (offer archive, optional)
	MongoURI string
	MongoDB  string

	// Scraping
	EnabledSources []string
	Origins        []string
	Destinations   []string
	DaysAhead      int
	TripLengthDays int
	Adults         int
	Children       int
	ScrapeInterval time.Duration
	TaskTimeout    time.Duration
	MaxRetries     int
	BatchSize      int

	// Per-source call budgets
	SourceLimits map[string]ratelimit.Limit

	// Source credentials
	KiwiAPIKey          string
	KiwiBaseURL         string
	RyanairBaseURL      string
	WizzairBaseURL      string
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusTokenURL     string
	AmadeusBaseURL      string
	SkyscannerBaseURL   string
}

// Defaults for the per-source budgets, matching each source's real quota.
var defaultLimits = map[string]ratelimit.Limit{
	"kiwi":       {MaxRequests: 100, Window: ratelimit.Monthly},
	"ryanair":    {MaxRequests: 5, Window: ratelimit.Daily},
	"wizzair":    {MaxRequests: 50, Window: ratelimit.Daily},
	"skyscanner": {MaxRequests: 10, Window: ratelimit.Hourly},
	"amadeus":    {MaxRequests: 500, Window: ratelimit.Monthly},
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=farescout password=farescout dbname=farescout port=5432 sslmode=disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		MongoURI: getEnv("MONGODB_DSN", ""),
		MongoDB:  getEnv("MONGO_DB", "farescout"),

		EnabledSources: getEnvAsSlice("ENABLED_SOURCES", []string{"kiwi", "ryanair", "wizzair"}),
		Origins:        getEnvAsSlice("SEARCH_ORIGINS", []string{"MUC", "FMM"}),
		Destinations:   getEnvAsSlice("SEARCH_DESTINATIONS", []string{"LIS", "BCN", "PRG"}),
		DaysAhead:      getEnvAsInt("SEARCH_DAYS_AHEAD", 30),
		TripLengthDays: getEnvAsInt("SEARCH_TRIP_LENGTH_DAYS", 7),
		Adults:         getEnvAsInt("SEARCH_ADULTS", 2),
		Children:       getEnvAsInt("SEARCH_CHILDREN", 2),
		ScrapeInterval: time.Duration(getEnvAsInt("SCRAPE_INTERVAL_MINUTES", 360)) * time.Minute,
		TaskTimeout:    time.Duration(getEnvAsInt("TASK_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxRetries:     getEnvAsInt("SCRAPE_MAX_RETRIES", 3),
		BatchSize:      getEnvAsInt("PERSIST_BATCH_SIZE", 50),

		SourceLimits: loadSourceLimits(),

		KiwiAPIKey:          getEnv("KIWI_API_KEY", ""),
		KiwiBaseURL:         getEnv("KIWI_BASE_URL", "https://api.tequila.kiwi.com"),
		RyanairBaseURL:      getEnv("RYANAIR_BASE_URL", "https://www.ryanair.com"),
		WizzairBaseURL:      getEnv("WIZZAIR_BASE_URL", "https://be.wizzair.com/27.6.0"),
		AmadeusClientID:     getEnv("AMADEUS_CLIENT_ID", ""),
		AmadeusClientSecret: getEnv("AMADEUS_CLIENT_SECRET", ""),
		AmadeusTokenURL:     getEnv("AMADEUS_TOKEN_URL", "https://api.amadeus.com/v1/security/oauth2/token"),
		AmadeusBaseURL:      getEnv("AMADEUS_BASE_URL", "https://api.amadeus.com"),
		SkyscannerBaseURL:   getEnv("SKYSCANNER_BASE_URL", "https://www.skyscanner.net"),
	}

	return config, nil
}

// loadSourceLimits merges env overrides onto the default budgets.
// KIWI_MAX_REQUESTS=200 / KIWI_WINDOW=daily override kiwi's default.
func loadSourceLimits() map[string]ratelimit.Limit {
	limits := make(map[string]ratelimit.Limit, len(defaultLimits))
	for source, def := range defaultLimits {
		prefix := strings.ToUpper(source)
		limit := ratelimit.Limit{
			MaxRequests: int64(getEnvAsInt(prefix+"_MAX_REQUESTS", int(def.MaxRequests))),
			Window:      def.Window,
		}
		switch strings.ToLower(getEnv(prefix+"_WINDOW", string(def.Window))) {
		case string(ratelimit.Hourly):
			limit.Window = ratelimit.Hourly
		case string(ratelimit.Daily):
			limit.Window = ratelimit.Daily
		case string(ratelimit.Monthly):
			limit.Window = ratelimit.Monthly
		}
		limits[source] = limit
	}
	return limits
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
