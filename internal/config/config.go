package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string
	LogLevel           string
	DBDSN              string
	HTTPAddr           string
	RestaurantID       string
	RestaurantTimezone string
	FlushInterval      time.Duration
	AvgTicketPerPerson float64
	LoadWindowDays     int
}

// Load reads .env when present, then the environment. DB_DSN is checked by
// RequireDB since not every command talks to the database.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:        getEnv("ENV", "development"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		DBDSN:              os.Getenv("DB_DSN"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		RestaurantID:       getEnv("RESTAURANT_ID", "REST_001"),
		RestaurantTimezone: getEnv("RESTAURANT_TIMEZONE", "UTC"),
	}

	var err error
	if cfg.FlushInterval, err = time.ParseDuration(getEnv("FLUSH_INTERVAL", "30s")); err != nil {
		return nil, fmt.Errorf("parse FLUSH_INTERVAL: %w", err)
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("FLUSH_INTERVAL must be positive, got %s", cfg.FlushInterval)
	}
	if cfg.AvgTicketPerPerson, err = strconv.ParseFloat(getEnv("AVG_TICKET_PER_PERSON", "25"), 64); err != nil {
		return nil, fmt.Errorf("parse AVG_TICKET_PER_PERSON: %w", err)
	}
	if cfg.LoadWindowDays, err = strconv.Atoi(getEnv("LOAD_WINDOW_DAYS", "7")); err != nil {
		return nil, fmt.Errorf("parse LOAD_WINDOW_DAYS: %w", err)
	}
	if cfg.LoadWindowDays < 1 {
		return nil, fmt.Errorf("LOAD_WINDOW_DAYS must be at least 1, got %d", cfg.LoadWindowDays)
	}
	if _, err := time.LoadLocation(cfg.RestaurantTimezone); err != nil {
		return nil, fmt.Errorf("parse RESTAURANT_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// RequireDB fails when no database DSN is configured.
func (c *Config) RequireDB() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
