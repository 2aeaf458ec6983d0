package model

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Transport selects the router management interface a session talks to.
type Transport string

const (
	// TransportAPI is the binary RouterOS API (8728, 8729 with TLS).
	TransportAPI Transport = "api"
	// TransportREST is the RouterOS REST service under /rest.
	TransportREST Transport = "rest"
)

// RouterConfig holds connection parameters for one management session.
type RouterConfig struct {
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	Transport Transport `json:"transport,omitempty"`
	SSL       bool      `json:"ssl"`
	VerifyTLS bool      `json:"verify_tls"`
}

// ParseTransport maps free-form input onto a known transport, defaulting to API.
func ParseTransport(raw string) Transport {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rest", "http", "https":
		return TransportREST
	default:
		return TransportAPI
	}
}

// DefaultPort returns the well-known port for the configured transport.
func (c RouterConfig) DefaultPort() int {
	switch {
	case c.Transport == TransportREST && c.SSL:
		return 443
	case c.Transport == TransportREST:
		return 80
	case c.SSL:
		return 8729
	default:
		return 8728
	}
}

// EffectivePort returns Port, or DefaultPort when unset.
func (c RouterConfig) EffectivePort() int {
	if c.Port > 0 {
		return c.Port
	}
	return c.DefaultPort()
}

// Redacted returns a copy safe to log or hand to the UI.
func (c RouterConfig) Redacted() RouterConfig {
	c.Password = ""
	return c
}

// BaseURL returns the REST root for the router, ending in /rest.
func (c RouterConfig) BaseURL() string {
	defaultScheme := "https"
	if !c.SSL {
		defaultScheme = "http"
	}

	raw := strings.TrimSpace(c.Host)
	if raw == "" {
		return defaultScheme + ":///rest"
	}
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + "://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		host := strings.TrimSpace(c.Host)
		host = strings.TrimPrefix(strings.TrimPrefix(host, "http://"), "https://")
		host = strings.Trim(host, "/")
		return defaultScheme + "://" + host + "/rest"
	}

	scheme := strings.TrimSpace(parsed.Scheme)
	if scheme == "" {
		scheme = defaultScheme
	}
	// An explicit Port replaces any port written into Host.
	host := parsed.Host
	if c.Port > 0 {
		host = hostOnly(parsed.Hostname())
		if !isSchemeDefaultPort(scheme, c.Port) {
			host = net.JoinHostPort(parsed.Hostname(), strconv.Itoa(c.Port))
		}
	}

	path := strings.TrimSuffix(strings.TrimSpace(parsed.Path), "/")
	switch {
	case path == "", path == "/":
		path = "/rest"
	case strings.HasSuffix(path, "/rest"):
		// Keep an explicit REST path (for example behind reverse proxy).
	default:
		path = path + "/rest"
	}

	return scheme + "://" + host + path
}

func hostOnly(hostname string) string {
	if strings.Contains(hostname, ":") {
		return "[" + hostname + "]"
	}
	return hostname
}

func isSchemeDefaultPort(scheme string, port int) bool {
	return (scheme == "http" && port == 80) || (scheme == "https" && port == 443)
}
