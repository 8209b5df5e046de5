package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	// Survey backend. An empty URL disables submission only.
	SurveyAPIURL     string
	SurveyAPISecret  string
	SurveyAPITimeout time.Duration

	// WizardPlanStep controls whether the survey starts with plan selection.
	WizardPlanStep bool

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	DatabasePath string
	LogLevel     string
	Port         string
}

// ErrMissingSurveyAPIURL is returned by RequireSurveyAPI.
var ErrMissingSurveyAPIURL = errors.New("SURVEY_API_URL environment variable not set")

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		SurveyAPIURL:       strings.TrimRight(os.Getenv("SURVEY_API_URL"), "/"),
		SurveyAPISecret:    os.Getenv("SURVEY_API_SECRET"),
		SurveyAPITimeout:   15 * time.Second,
		WizardPlanStep:     true,
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		DatabasePath:       envOr("DATABASE_PATH", "data/survey.db"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		Port:               envOr("PORT", "8080"),
	}

	if v := os.Getenv("SURVEY_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid SURVEY_API_TIMEOUT %q: expected a positive duration", v)
		}
		cfg.SurveyAPITimeout = d
	}

	if v := os.Getenv("WIZARD_PLAN_STEP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WIZARD_PLAN_STEP %q: %w", v, err)
		}
		cfg.WizardPlanStep = b
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireBot checks the settings the Telegram bot cannot start without.
func (c *Config) RequireBot() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// RequireSurveyAPI checks the survey backend is configured.
func (c *Config) RequireSurveyAPI() error {
	if c.SurveyAPIURL == "" {
		return ErrMissingSurveyAPIURL
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
