package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Rate source chain
	PrimarySourceURL   string
	SecondarySourceURL string
	SecondaryAPIKey    string
	BaseCurrency       string
	FetchTimeout       time.Duration

	// Scheduler / executor
	TickInterval      time.Duration
	UpdateConcurrency int

	// Failure notifications
	NotifyWebhookURL string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("PRIMARY_SOURCE_URL", "")
	viper.SetDefault("SECONDARY_SOURCE_URL", "")
	viper.SetDefault("SECONDARY_API_KEY", "")
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("FETCH_TIMEOUT", "10s")
	viper.SetDefault("TICK_INTERVAL", "1h")
	viper.SetDefault("UPDATE_CONCURRENCY", 4)
	viper.SetDefault("NOTIFY_WEBHOOK_URL", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.PrimarySourceURL = viper.GetString("PRIMARY_SOURCE_URL")
	if cfg.PrimarySourceURL == "" {
		log.Println("Warning: PRIMARY_SOURCE_URL not set. The primary rate source will always fail.")
	}
	cfg.SecondarySourceURL = viper.GetString("SECONDARY_SOURCE_URL")
	if cfg.SecondarySourceURL == "" {
		log.Println("Warning: SECONDARY_SOURCE_URL not set. The secondary rate source will always fail.")
	}
	cfg.SecondaryAPIKey = viper.GetString("SECONDARY_API_KEY")
	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")

	fetchTimeoutStr := viper.GetString("FETCH_TIMEOUT")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		fetchTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for FETCH_TIMEOUT ('%s'). Defaulting to %s.\n", fetchTimeoutStr, fetchTimeout)
	}
	cfg.FetchTimeout = fetchTimeout

	tickIntervalStr := viper.GetString("TICK_INTERVAL")
	tickInterval, err := time.ParseDuration(tickIntervalStr)
	if err != nil {
		tickInterval = time.Hour
		log.Printf("Warning: Invalid value for TICK_INTERVAL ('%s'). Defaulting to %s.\n", tickIntervalStr, tickInterval)
	}
	cfg.TickInterval = tickInterval

	cfg.UpdateConcurrency = viper.GetInt("UPDATE_CONCURRENCY")
	if cfg.UpdateConcurrency <= 0 {
		cfg.UpdateConcurrency = 4
	}

	cfg.NotifyWebhookURL = viper.GetString("NOTIFY_WEBHOOK_URL")
	if cfg.NotifyWebhookURL == "" {
		log.Println("Warning: NOTIFY_WEBHOOK_URL not set. Rate failure notifications will only be logged.")
	}

	return cfg, nil
}
