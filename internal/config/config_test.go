/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HUGIN_DB_DSN", "file::memory:?cache=shared")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Errorf("default backend = %q, want sqlite", cfg.DBBackend)
	}
	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr())
	}
	if cfg.FrameRate != 29.976 {
		t.Errorf("default frame rate = %v", cfg.FrameRate)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should default to enabled")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("HUGIN_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when HUGIN_DB_DSN is empty")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HUGIN_DB_DSN", "dsn")
	t.Setenv("HUGIN_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HUGIN_DB_DSN", "dsn")
	t.Setenv("HUGIN_DB_BACKEND", "postgres")
	t.Setenv("HUGIN_HTTP_PORT", "9090")
	t.Setenv("HUGIN_FRAME_RATE", "25")
	t.Setenv("HUGIN_FILL_MAX_ITERATIONS", "500")
	t.Setenv("HUGIN_METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Errorf("backend = %q", cfg.DBBackend)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("port = %d", cfg.HTTPPort)
	}
	if cfg.FrameRate != 25 {
		t.Errorf("frame rate = %v", cfg.FrameRate)
	}
	if cfg.FillMaxIterations != 500 {
		t.Errorf("max iterations = %d", cfg.FillMaxIterations)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics should be disabled")
	}
}
