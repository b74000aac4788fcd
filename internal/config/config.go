package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// TokenRequestsPerMinute caps register and token requests per client address
	TokenRequestsPerMinute int
}

// LedgerConfig tunes the transaction engine
type LedgerConfig struct {
	MinTopUpAmount int64
	TxMaxAttempts  int
	TxRetryBase    time.Duration
	// MutationsPerMinute caps mutating requests per principal; 0 disables
	MutationsPerMinute int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "localhost"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     time.Duration(getEnvAsInt("HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvAsInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvAsInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
			CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: parseDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret:              getEnv("JWT_SECRET", ""),
			TokenTTL:               time.Duration(getEnvAsInt("JWT_TTL_MINUTES", 60)) * time.Minute,
			TokenRequestsPerMinute: getEnvAsInt("AUTH_TOKEN_REQUESTS_PER_MINUTE", 10),
		},
		Ledger: LedgerConfig{
			MinTopUpAmount:     int64(getEnvAsInt("LEDGER_MIN_TOPUP", 5000)),
			TxMaxAttempts:      getEnvAsInt("LEDGER_TX_MAX_ATTEMPTS", 3),
			TxRetryBase:        time.Duration(getEnvAsInt("LEDGER_TX_RETRY_BASE_MS", 20)) * time.Millisecond,
			MutationsPerMinute: getEnvAsInt("LEDGER_MUTATIONS_PER_MINUTE", 60),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Validate rejects settings the ledger cannot run with
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = "dev-secret-change-me"
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	if c.Ledger.MinTopUpAmount <= 0 {
		return errors.New("LEDGER_MIN_TOPUP must be positive")
	}
	if c.Ledger.TxMaxAttempts < 1 {
		return errors.New("LEDGER_TX_MAX_ATTEMPTS must be at least 1")
	}
	if c.Ledger.TxRetryBase < 0 {
		return errors.New("LEDGER_TX_RETRY_BASE_MS must not be negative")
	}
	return nil
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "crowdfund_ledger"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.DBName = strings.TrimPrefix(u.Path, "/")

	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
