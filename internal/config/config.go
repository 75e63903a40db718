// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the analyzer service.
type Config struct {
	Port                 string
	DatabaseURL          string
	RedisURL             string
	HHBaseURL            string // hh.ru vacancy search endpoint
	HHUserAgent          string
	RefreshIntervalHours int    // how often the background refresher fires
	ExportDir            string // where on-demand JSON exports are written
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

	interval := 6
	if s := os.Getenv("REFRESH_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("REFRESH_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	baseURL := os.Getenv("HH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.hh.ru/vacancies"
	}

	userAgent := os.Getenv("HH_USER_AGENT")
	if userAgent == "" {
		userAgent = "VacancyAnalyzer/1.0"
	}

	exportDir := os.Getenv("EXPORT_DIR")
	if exportDir == "" {
		exportDir = "."
	}

	port := os.Getenv("ANALYZER_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		HHBaseURL:            baseURL,
		HHUserAgent:          userAgent,
		RefreshIntervalHours: interval,
		ExportDir:            exportDir,
	}, nil
}
