// Package config loads process settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	Addr            string
	LogLevel        string
	AutoMigrate     bool
	RateLimitRPS    float64
	RateLimitBurst  int
	CORSOrigins     []string
	TracesExporter  string
	ServiceName     string
	ShutdownTimeout time.Duration
}

// LoadDotEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:    GetEnvOrDefault("DATABASE_URL", "sqlite:///tasks.db"),
		Addr:           GetEnvOrDefault("ADDR", ":8080"),
		LogLevel:       GetEnvOrDefault("LOG_LEVEL", "info"),
		TracesExporter: strings.ToLower(GetEnvOrDefault("OTEL_TRACES_EXPORTER", "none")),
		ServiceName:    GetEnvOrDefault("OTEL_SERVICE_NAME", "todo-api"),
		CORSOrigins:    splitList(GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.AutoMigrate, err = strconv.ParseBool(GetEnvOrDefault("AUTO_MIGRATE", "true")); err != nil {
		return Config{}, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(GetEnvOrDefault("RATE_LIMIT_RPS", "0"), 64); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(GetEnvOrDefault("RATE_LIMIT_BURST", "10")); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(GetEnvOrDefault("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	switch cfg.TracesExporter {
	case "none", "stdout", "otlp":
	default:
		return Config{}, fmt.Errorf("OTEL_TRACES_EXPORTER: unknown exporter %q", cfg.TracesExporter)
	}
	return cfg, nil
}

// GetEnvOrDefault returns the variable's value, or fallback when it is unset
// or empty.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
