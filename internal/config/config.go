package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/liamashdown/holderscope/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	// Upstream endpoints
	GammaAPIBaseURL  string
	DataAPIBaseURL   string
	LBAPIBaseURL     string
	ProfileBaseURL   string
	HTTPExtraHeaders map[string]string

	// Enrichment
	TopHolders            int
	HolderDelay           time.Duration
	EnrichWorkers         int
	ActivityLimit         int
	DerivedPositionsLimit int

	// Rate limits (requests per second)
	GammaAPIRPS           float64
	DataAPIHoldersRPS     float64
	DataAPIPositionsRPS   float64
	DataAPIActivityRPS    float64
	DataAPILeaderboardRPS float64
	LBAPIRPS              float64
	ProfileRPS            float64

	// Timeouts
	PrimaryTimeout    time.Duration
	PositionTimeout   time.Duration
	ActivityTimeout   time.Duration
	ProfitAPITimeout  time.Duration
	ProfileTimeout    time.Duration
	DerivedPnLTimeout time.Duration

	// Caching
	EventCacheTTL time.Duration

	// Publishing
	PublishMode        string // none, log, discord (comma-separated)
	DiscordWebhookURLs []string

	// Server
	HTTPPort int
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		GammaAPIBaseURL:       getEnv("GAMMA_API_BASE_URL", "https://gamma-api.polymarket.com"),
		DataAPIBaseURL:        getEnv("DATA_API_BASE_URL", "https://data-api.polymarket.com"),
		LBAPIBaseURL:          getEnv("LB_API_BASE_URL", "https://lb-api.polymarket.com"),
		ProfileBaseURL:        getEnv("PROFILE_BASE_URL", "https://polymarket.com"),
		TopHolders:            getEnvInt("TOP_HOLDERS", 15),
		HolderDelay:           getEnvDuration("HOLDER_DELAY", 150*time.Millisecond),
		EnrichWorkers:         getEnvInt("ENRICH_WORKERS", 1),
		ActivityLimit:         getEnvInt("ACTIVITY_LIMIT", 50),
		DerivedPositionsLimit: getEnvInt("DERIVED_POSITIONS_LIMIT", 500),
		GammaAPIRPS:           getEnvFloat("GAMMA_API_RPS", 5.0),
		DataAPIHoldersRPS:     getEnvFloat("DATA_API_HOLDERS_RPS", 2.0),
		DataAPIPositionsRPS:   getEnvFloat("DATA_API_POSITIONS_RPS", 5.0),
		DataAPIActivityRPS:    getEnvFloat("DATA_API_ACTIVITY_RPS", 5.0),
		DataAPILeaderboardRPS: getEnvFloat("DATA_API_LEADERBOARD_RPS", 5.0),
		LBAPIRPS:              getEnvFloat("LB_API_RPS", 5.0),
		ProfileRPS:            getEnvFloat("PROFILE_RPS", 2.0),
		PrimaryTimeout:        getEnvDuration("PRIMARY_TIMEOUT", 30*time.Second),
		PositionTimeout:       getEnvDuration("POSITION_TIMEOUT", 5*time.Second),
		ActivityTimeout:       getEnvDuration("ACTIVITY_TIMEOUT", 5*time.Second),
		ProfitAPITimeout:      getEnvDuration("PROFIT_API_TIMEOUT", 5*time.Second),
		ProfileTimeout:        getEnvDuration("PROFILE_TIMEOUT", 10*time.Second),
		DerivedPnLTimeout:     getEnvDuration("DERIVED_PNL_TIMEOUT", 10*time.Second),
		EventCacheTTL:         getEnvDuration("EVENT_CACHE_TTL", 5*time.Minute),
		PublishMode:           getEnv("PUBLISH_MODE", "none"),
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	// Webhook URLs and extra headers may carry credentials, so both accept
	// a _FILE variant
	urls, err := secrets.Get("DISCORD_WEBHOOK_URLS", "")
	if err != nil {
		return nil, err
	}
	cfg.DiscordWebhookURLs = ParseCSV(urls)

	extraHeadersJSON, err := secrets.Get("HTTP_EXTRA_HEADERS", "{}")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(extraHeadersJSON), &cfg.HTTPExtraHeaders); err != nil {
		return nil, fmt.Errorf("invalid HTTP_EXTRA_HEADERS JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.GammaAPIBaseURL == "" {
		return fmt.Errorf("GAMMA_API_BASE_URL is required")
	}
	if c.DataAPIBaseURL == "" {
		return fmt.Errorf("DATA_API_BASE_URL is required")
	}

	if c.TopHolders < 1 || c.TopHolders > 100 {
		return fmt.Errorf("TOP_HOLDERS must be between 1 and 100, got %d", c.TopHolders)
	}
	if c.EnrichWorkers < 1 {
		return fmt.Errorf("ENRICH_WORKERS must be at least 1, got %d", c.EnrichWorkers)
	}
	if c.HolderDelay < 0 {
		return fmt.Errorf("HOLDER_DELAY cannot be negative")
	}

	for name, d := range map[string]time.Duration{
		"PRIMARY_TIMEOUT":     c.PrimaryTimeout,
		"POSITION_TIMEOUT":    c.PositionTimeout,
		"ACTIVITY_TIMEOUT":    c.ActivityTimeout,
		"PROFIT_API_TIMEOUT":  c.ProfitAPITimeout,
		"PROFILE_TIMEOUT":     c.ProfileTimeout,
		"DERIVED_PNL_TIMEOUT": c.DerivedPnLTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	// Validate publish mode (comma-separated list)
	for _, mode := range c.PublishModes() {
		switch mode {
		case "none", "log":
		case "discord":
			if len(c.DiscordWebhookURLs) == 0 {
				return fmt.Errorf("DISCORD_WEBHOOK_URLS is required when discord is in PUBLISH_MODE")
			}
		default:
			return fmt.Errorf("invalid PUBLISH_MODE value: %s (valid values: none, log, discord)", mode)
		}
	}

	return nil
}

// PublishModes returns the trimmed, non-empty entries of PublishMode
func (c *Config) PublishModes() []string {
	return ParseCSV(c.PublishMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// ParseCSV splits a comma-separated list, dropping blank entries
func ParseCSV(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
