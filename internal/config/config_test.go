package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_PATH", "LOG_LEVEL", "COMMAND_TIMEOUT", "REFRESH_INTERVAL", "ROUTER_TRANSPORT", "AUTO_RECONNECT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPAddr != ":8099" || cfg.DBPath != "/data/hotspot_monitor.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CommandTimeout != 10*time.Second || cfg.RefreshInterval != 15*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.DefaultTransport != model.TransportAPI || !cfg.AutoReconnect || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBDir() != "/data" {
		t.Fatalf("DBDir() = %q, want /data", cfg.DBDir())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", " :9000 ")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("COMMAND_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1s")
	t.Setenv("ROUTER_TRANSPORT", "rest")
	t.Setenv("AUTO_RECONNECT", "false")

	cfg := Load()
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("HTTPAddr = %q, want :9000", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.CommandTimeout != 3*time.Second {
		t.Fatalf("CommandTimeout = %v, want 3s", cfg.CommandTimeout)
	}
	if cfg.RefreshInterval != 5*time.Second {
		t.Fatalf("RefreshInterval = %v, want clamp to 5s", cfg.RefreshInterval)
	}
	if cfg.DefaultTransport != model.TransportREST || cfg.AutoReconnect {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("COMMAND_TIMEOUT", "soon")
	t.Setenv("REFRESH_INTERVAL", "-1s")
	t.Setenv("AUTO_RECONNECT", "maybe")

	cfg := Load()
	if cfg.CommandTimeout != 10*time.Second || cfg.RefreshInterval != 15*time.Second || !cfg.AutoReconnect {
		t.Fatalf("invalid values should fall back: %+v", cfg)
	}
}
