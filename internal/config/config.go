package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// AuthMode selects how submissions authenticate against the ingest API.
type AuthMode string

const (
	// AuthBasic sends a standard Authorization: Basic header built from
	// API_USERNAME and API_KEY.
	AuthBasic AuthMode = "BASIC"
	// AuthAPIKey sends the API_TOKEN value in the X-API-KEY header.
	AuthAPIKey AuthMode = "APIKEY"
)

// Config is the immutable process configuration, loaded once at startup.
type Config struct {
	APIEndpoint string
	RPUID       int
	FilePath    string

	AuthMode    AuthMode
	APIUsername string
	APIKey      string
	APIToken    string

	Timezone *time.Location
	LogLevel string
	Debounce time.Duration

	// Optional status API
	StatusAddr     string
	StatusUsername string
	StatusPassword string

	// Optional submission journal
	HistoryDB string

	// Optional announcers
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	NATSURL       string
	NATSSubject   string
}

// Load reads configuration from the environment (optionally backed by a
// config.yaml in the working directory) and validates it. Any missing or
// malformed required value is an error; the caller treats that as fatal.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEBOUNCE_MS", "300")
	viper.SetDefault("NATS_SUBJECT", "nowplaying")
	viper.SetDefault("REDIS_DB", "0")

	// Try to read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using env vars or defaults
	}

	cfg := &Config{
		APIEndpoint:    getEnv("API_ENDPOINT", viper.GetString("API_ENDPOINT")),
		FilePath:       getEnv("FILE_PATH", viper.GetString("FILE_PATH")),
		APIUsername:    getEnv("API_USERNAME", viper.GetString("API_USERNAME")),
		APIKey:         getEnv("API_KEY", viper.GetString("API_KEY")),
		APIToken:       getEnv("API_TOKEN", viper.GetString("API_TOKEN")),
		LogLevel:       getEnv("LOG_LEVEL", viper.GetString("LOG_LEVEL")),
		StatusAddr:     getEnv("STATUS_ADDR", viper.GetString("STATUS_ADDR")),
		StatusUsername: getEnv("STATUS_USERNAME", viper.GetString("STATUS_USERNAME")),
		StatusPassword: getEnv("STATUS_PASSWORD", viper.GetString("STATUS_PASSWORD")),
		HistoryDB:      getEnv("HISTORY_DB", viper.GetString("HISTORY_DB")),
		RedisAddress:   getEnv("REDIS_ADDRESS", viper.GetString("REDIS_ADDRESS")),
		RedisPassword:  getEnv("REDIS_PASSWORD", viper.GetString("REDIS_PASSWORD")),
		NATSURL:        getEnv("NATS_URL", viper.GetString("NATS_URL")),
		NATSSubject:    getEnv("NATS_SUBJECT", viper.GetString("NATS_SUBJECT")),
	}

	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("required setting API_ENDPOINT is not set")
	}
	endpoint, err := url.Parse(cfg.APIEndpoint)
	if err != nil || !endpoint.IsAbs() || (endpoint.Scheme != "http" && endpoint.Scheme != "https") {
		return nil, fmt.Errorf("API_ENDPOINT %q is not an absolute http(s) URL", cfg.APIEndpoint)
	}

	rpuid := getEnv("RPUID", viper.GetString("RPUID"))
	if rpuid == "" {
		return nil, fmt.Errorf("required setting RPUID is not set")
	}
	cfg.RPUID, err = strconv.Atoi(rpuid)
	if err != nil {
		return nil, fmt.Errorf("RPUID %q is not an integer: %w", rpuid, err)
	}

	if cfg.FilePath == "" {
		return nil, fmt.Errorf("required setting FILE_PATH is not set")
	}

	if cfg.AuthMode, err = resolveAuthMode(cfg); err != nil {
		return nil, err
	}

	tz := getEnv("TIMEZONE", viper.GetString("TIMEZONE"))
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE %q: %w", tz, err)
	}

	debounceMS := getEnv("DEBOUNCE_MS", viper.GetString("DEBOUNCE_MS"))
	ms, err := strconv.Atoi(debounceMS)
	if err != nil || ms <= 0 {
		return nil, fmt.Errorf("DEBOUNCE_MS %q is not a positive integer", debounceMS)
	}
	cfg.Debounce = time.Duration(ms) * time.Millisecond

	if db := getEnv("REDIS_DB", viper.GetString("REDIS_DB")); db != "" {
		cfg.RedisDB, err = strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB %q is not an integer: %w", db, err)
		}
	}

	return cfg, nil
}

// resolveAuthMode validates that exactly one credential form is configured.
func resolveAuthMode(cfg *Config) (AuthMode, error) {
	hasBasic := cfg.APIUsername != "" && cfg.APIKey != ""
	hasToken := cfg.APIToken != ""

	switch {
	case hasBasic && hasToken:
		return "", fmt.Errorf("both API_USERNAME/API_KEY and API_TOKEN are set; configure exactly one credential form")
	case hasBasic:
		return AuthBasic, nil
	case hasToken:
		return AuthAPIKey, nil
	case cfg.APIUsername != "" || cfg.APIKey != "":
		return "", fmt.Errorf("basic auth requires both API_USERNAME and API_KEY")
	default:
		return "", fmt.Errorf("no credentials configured: set API_USERNAME/API_KEY or API_TOKEN")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
