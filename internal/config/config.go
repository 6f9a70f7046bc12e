// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the watcher service.
type Config struct {
	Port                  string
	DatabaseURL           string
	RedisURL              string
	GreenhouseBaseURL     string // override point for tests
	PollIntervalMinutes   int    // how often the sweep cron fires
	MaxConcurrentPolls    int    // bounded in-flight source fetches per sweep
	RequestTimeoutSeconds int    // per fetch / per delivery
	LogLevel              string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval, err := positiveInt("POLL_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	maxPolls, err := positiveInt("MAX_CONCURRENT_POLLS", 5)
	if err != nil {
		return nil, err
	}

	timeout, err := positiveInt("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	port := os.Getenv("WATCHER_PORT")
	if port == "" {
		port = "8082"
	}

	baseURL := os.Getenv("GREENHOUSE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://boards-api.greenhouse.io"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		GreenhouseBaseURL:     baseURL,
		PollIntervalMinutes:   interval,
		MaxConcurrentPolls:    maxPolls,
		RequestTimeoutSeconds: timeout,
		LogLevel:              level,
	}, nil
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
