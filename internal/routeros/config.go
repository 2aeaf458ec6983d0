package routeros

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

const defaultTimeout = 10 * time.Second

// Config is a validated connection profile for one transport.
type Config struct {
	Transport model.Transport
	// Address is host:port for the binary API.
	Address string
	// BaseURL is the REST root, ending in /rest.
	BaseURL   string
	Username  string
	Password  string
	UseTLS    bool
	VerifyTLS bool
	Timeout   time.Duration
}

// Target returns the endpoint the transport connects to.
func (c Config) Target() string {
	if c.Transport == model.TransportREST {
		return c.BaseURL
	}
	return c.Address
}

func normalizeConfig(cfg model.RouterConfig, timeout time.Duration) (Config, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	host := strings.TrimSpace(cfg.Host)
	username := strings.TrimSpace(cfg.Username)
	password := strings.TrimSpace(cfg.Password)
	if host == "" {
		return Config{}, &ValidationError{Field: "host", Reason: "is required"}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, &ValidationError{Field: "port", Reason: "must be between 1 and 65535"}
	}
	if username == "" {
		return Config{}, &ValidationError{Field: "username", Reason: "is required"}
	}
	if password == "" {
		return Config{}, &ValidationError{Field: "password", Reason: "is required"}
	}

	transport := cfg.Transport
	if transport != model.TransportREST {
		transport = model.TransportAPI
	}
	cfg.Transport = transport
	cfg.Host = host

	out := Config{
		Transport: transport,
		Username:  username,
		Password:  cfg.Password,
		UseTLS:    cfg.SSL,
		VerifyTLS: cfg.VerifyTLS,
		Timeout:   timeout,
	}
	if transport == model.TransportREST {
		out.BaseURL = strings.TrimSuffix(cfg.BaseURL(), "/")
		return out, nil
	}

	address, err := normalizeAddress(host, cfg.EffectivePort(), cfg.Port > 0)
	if err != nil {
		return Config{}, err
	}
	out.Address = address
	return out, nil
}

// normalizeAddress joins host and port. A port embedded in raw is kept only
// when override is false.
func normalizeAddress(raw string, port int, override bool) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &ValidationError{Field: "host", Reason: "is required"}
	}

	if strings.Contains(value, "/") && !strings.Contains(value, "://") {
		value = strings.Split(value, "/")[0]
	}
	if !strings.Contains(value, "://") {
		value = "routeros://" + value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", &ValidationError{Field: "host", Reason: fmt.Sprintf("invalid value: %v", err)}
	}

	host := strings.TrimSpace(parsed.Host)
	if host == "" {
		host = strings.TrimSpace(parsed.Path)
	}
	if host == "" {
		return "", &ValidationError{Field: "host", Reason: "host is empty"}
	}

	return withPort(host, port, override)
}

func withPort(host string, port int, override bool) (string, error) {
	if bare, _, err := net.SplitHostPort(host); err == nil {
		if !override {
			return host, nil
		}
		host = bare
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	}
	if strings.TrimSpace(host) == "" {
		return "", &ValidationError{Field: "host", Reason: "host is empty"}
	}

	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
