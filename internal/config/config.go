package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nany306/bunny-assistant/internal/repository"
)

// Config keeps runtime settings for the assistant.
type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	TelegramToken  string
	ReportTime     string
	ReportInterval time.Duration
	IDMode         repository.IDMode
}

// Load reads configuration from environment variables with sane defaults.
// An empty TELEGRAM_TOKEN disables the bot; the HTTP API is always on.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReportTime:     strings.TrimSpace(os.Getenv("REPORT_TIME")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "assistant.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	mode, err := repository.ParseIDMode(strings.TrimSpace(os.Getenv("ID_MODE")))
	if err != nil {
		return cfg, fmt.Errorf("ID_MODE: %w", err)
	}
	cfg.IDMode = mode

	if cfg.ReportTime != "" {
		if _, err := time.Parse("15:04", cfg.ReportTime); err != nil {
			return cfg, fmt.Errorf("REPORT_TIME %q: expected HH:MM", cfg.ReportTime)
		}
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
