// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Locations     []string
	BaseURL       string
	RefreshPeriod time.Duration
	DatabasePath  string
	FetchTimeout  time.Duration
	FutureHours   int
	FutureDays    int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Email report configuration. Reports are disabled unless both an
	// SMTP host and at least one recipient are set.
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	ReportFrom       string
	ReportRecipients []string
	ReportLocation   string
	ReportTimes      []string
	ReportsEnabled   bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is merged in first
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	refresh, err := parseDuration("WEATHER_REFRESH_PERIOD", "10m")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	futureHours, err := parseInt("REPORT_FUTURE_HOURS", 8)
	if err != nil {
		return nil, err
	}
	futureDays, err := parseInt("REPORT_FUTURE_DAYS", 5)
	if err != nil {
		return nil, err
	}
	smtpPort, err := parseInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	locations := splitList(os.Getenv("WEATHER_LOCATIONS"))
	recipients := splitList(os.Getenv("REPORT_RECIPIENTS"))

	cfg := &Config{
		Locations:     locations,
		BaseURL:       envOrDefault("WEATHER_BASE_URL", "https://www.bbc.com/weather"),
		RefreshPeriod: refresh,
		DatabasePath:  envOrDefault("WEATHER_DB_PATH", "weatherwatch.db"),
		FetchTimeout:  fetchTimeout,
		FutureHours:   futureHours,
		FutureDays:    futureDays,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		ReportFrom:       os.Getenv("REPORT_FROM"),
		ReportRecipients: recipients,
		ReportTimes:      splitList(envOrDefault("REPORT_TIMES", "07:00,18:00")),
	}

	if len(cfg.Locations) == 0 {
		return nil, errors.New("WEATHER_LOCATIONS is required")
	}
	if cfg.RefreshPeriod <= 0 {
		return nil, errors.New("WEATHER_REFRESH_PERIOD must be positive")
	}
	if cfg.FutureHours <= 0 || cfg.FutureDays <= 0 {
		return nil, errors.New("REPORT_FUTURE_HOURS and REPORT_FUTURE_DAYS must be positive")
	}

	cfg.ReportsEnabled = cfg.SMTPHost != "" && len(cfg.ReportRecipients) > 0
	if cfg.ReportsEnabled {
		if cfg.ReportFrom == "" {
			return nil, errors.New("REPORT_FROM is required when reports are enabled")
		}
		for _, ts := range cfg.ReportTimes {
			if _, err := time.Parse("15:04", ts); err != nil {
				return nil, fmt.Errorf("invalid REPORT_TIMES entry %q", ts)
			}
		}
	}

	cfg.ReportLocation = envOrDefault("REPORT_LOCATION", cfg.Locations[0])
	if !contains(cfg.Locations, cfg.ReportLocation) {
		return nil, errors.New("REPORT_LOCATION must be one of WEATHER_LOCATIONS")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// splitList parses a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
