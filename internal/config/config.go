/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string

	// FrameRate used for frame guards when a channel does not override it.
	FrameRate float64

	// FillMaxIterations bounds placements per fill run; 0 lets the engine
	// derive a bound from catalog and gap counts.
	FillMaxIterations int

	MetricsEnabled bool
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:       getEnv("HUGIN_ENV", "development"),
		HTTPBind:          getEnv("HUGIN_HTTP_BIND", "0.0.0.0"),
		HTTPPort:          getEnvInt("HUGIN_HTTP_PORT", 8080),
		DBBackend:         DatabaseBackend(getEnv("HUGIN_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:             getEnv("HUGIN_DB_DSN", ""),
		FrameRate:         getEnvFloat("HUGIN_FRAME_RATE", 29.976),
		FillMaxIterations: getEnvInt("HUGIN_FILL_MAX_ITERATIONS", 0),
		MetricsEnabled:    getEnvBool("HUGIN_METRICS_ENABLED", true),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("HUGIN_DB_DSN must be provided")
	}

	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("HUGIN_FRAME_RATE must be positive")
	}

	return cfg, nil
}

// HTTPAddr returns the bind address for the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

// ShutdownTimeout is how long graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return 10 * time.Second
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}
