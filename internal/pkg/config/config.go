package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // Timezone database for hosts without zoneinfo

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const (
	defaultPort     = 8080
	defaultTimezone = "America/Bogota"
	defaultDBURL    = "reminders.db"
)

// Config holds the runtime configuration read from the environment.
type Config struct {
	Port int

	// Timezone is the target zone every reminder time is normalized to.
	Timezone string
	Location *time.Location

	StoreDriver string
	DBURL       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ChannelSecret      string
	ChannelAccessToken string
	NotifyUserID       string
}

// Load reads configuration from environment variables (and .env via autoload).
func Load() (*Config, error) {
	cfg := &Config{
		Port:               defaultPort,
		Timezone:           getEnv("TIMEZONE", defaultTimezone),
		StoreDriver:        getEnv("STORE_DRIVER", StoreSQLite),
		DBURL:              getEnv("BLUEPRINT_DB_URL", defaultDBURL),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		ChannelSecret:      os.Getenv("CHANNEL_SECRET"),
		ChannelAccessToken: os.Getenv("CHANNEL_ACCESS_TOKEN"),
		NotifyUserID:       os.Getenv("NOTIFY_USER_ID"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", portStr)
		}
		cfg.Port = port
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB %q", dbStr)
		}
		cfg.RedisDB = db
	}

	switch cfg.StoreDriver {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// LineEnabled reports whether LINE push credentials and a recipient are configured.
func (c *Config) LineEnabled() bool {
	return c.ChannelSecret != "" && c.ChannelAccessToken != "" && c.NotifyUserID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
