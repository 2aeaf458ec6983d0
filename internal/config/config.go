package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

const (
	defaultHTTPAddr        = ":8099"
	defaultDBPath          = "/data/hotspot_monitor.db"
	defaultCommandTimeout  = 10 * time.Second
	defaultRefreshInterval = 15 * time.Second
	minRefreshInterval     = 5 * time.Second
)

// Config stores runtime settings loaded from environment variables.
type Config struct {
	HTTPAddr        string
	DBPath          string
	LogLevel        slog.Level
	CommandTimeout  time.Duration
	RefreshInterval time.Duration
	// DefaultTransport applies to logins that do not name a transport.
	DefaultTransport model.Transport
	// AutoReconnect restores the persisted session at startup.
	AutoReconnect bool
}

// Load builds Config from environment variables using stable defaults.
func Load() Config {
	refresh := parseDuration("REFRESH_INTERVAL", defaultRefreshInterval)
	if refresh < minRefreshInterval {
		refresh = minRefreshInterval
	}
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", defaultHTTPAddr),
		DBPath:           getenv("DB_PATH", defaultDBPath),
		LogLevel:         ParseLogLevel(getenv("LOG_LEVEL", "info")),
		CommandTimeout:   parseDuration("COMMAND_TIMEOUT", defaultCommandTimeout),
		RefreshInterval:  refresh,
		DefaultTransport: model.ParseTransport(getenv("ROUTER_TRANSPORT", string(model.TransportAPI))),
		AutoReconnect:    parseBool("AUTO_RECONNECT", true),
	}
}

// DBDir returns the target directory for DBPath.
func (c Config) DBDir() string {
	return filepath.Dir(c.DBPath)
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

// ParseLogLevel maps debug/info/warn/error, defaulting to info.
func ParseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
