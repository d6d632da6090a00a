package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Addr string

	// Storage
	StoreBackend string
	DBDriver     string
	DBDSN        string

	// Auth
	BcryptCost       int
	JWTSecret        string
	JWTTTL           time.Duration
	SecurityUsername string
	SecurityPassword string
	ResetCodeTTL     time.Duration

	// Email
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("config: Failed to load .env file", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:             getenv("ADDR", ":8080"),
		StoreBackend:     getenv("STORE_BACKEND", "sql"),
		DBDriver:         getenv("DB_DRIVER", "sqlite3"),
		DBDSN:            getenv("DB_DSN", "messenger.db"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SecurityUsername: os.Getenv("SECURITY_USERNAME"),
		SecurityPassword: os.Getenv("SECURITY_PASSWORD"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getenv("SMTP_PORT", "587"),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         os.Getenv("SMTP_FROM"),
	}

	var err error
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 0); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetCodeTTL, err = durationEnv("RESET_CODE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case "sql", "gorm":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.JWTSecret == "" {
		slog.Warn("config: JWT_SECRET is not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// AdminEnabled reports whether the shared basic-auth credential is set.
func (c *Config) AdminEnabled() bool {
	return c.SecurityUsername != "" && c.SecurityPassword != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
