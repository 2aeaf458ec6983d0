package routeros

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

const (
	restLoginProbe   = "/system/identity/print"
	maxErrorBodySize = 256
)

// RESTDialer opens sessions against the RouterOS REST service.
type RESTDialer struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRESTDialer returns a dialer that clones httpClient per session.
func NewRESTDialer(httpClient *http.Client, logger *slog.Logger) *RESTDialer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RESTDialer{httpClient: httpClient, logger: logger}
}

// Dial probes the credentials with a cheap read; a 401 or 403 is reported
// as a rejection.
func (d *RESTDialer) Dial(ctx context.Context, cfg Config) (Conn, error) {
	conn := &restConn{
		client:   httpClientForConfig(d.httpClient, cfg),
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
	}
	if _, err := conn.Run(ctx, restLoginProbe, nil); err != nil {
		conn.client.CloseIdleConnections()
		return nil, err
	}
	return conn, nil
}

type restConn struct {
	client   *http.Client
	baseURL  string
	username string
	password string

	mu     sync.RWMutex
	closed bool
}

func (c *restConn) Run(ctx context.Context, path string, params map[string]string) (*Reply, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrNotConnected
	}

	body, err := json.Marshal(restPayload(params))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: restErrorMessage(snippet)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeReply(raw), nil
}

// Close marks the connection unusable and drops idle keep-alives. Requests
// already in flight finish on their own.
func (c *restConn) Close(ctx context.Context) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.CloseIdleConnections()
	return nil
}

func httpClientForConfig(base *http.Client, cfg Config) *http.Client {
	client := *base
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if client.Timeout == 0 {
		client.Timeout = defaultTimeout
	}

	var transport *http.Transport
	if existing, ok := client.Transport.(*http.Transport); ok {
		transport = existing.Clone()
	} else if client.Transport != nil {
		// Custom round trippers (tests) are used as-is.
		return &client
	} else if defaultTransport, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = defaultTransport.Clone()
	} else {
		transport = &http.Transport{}
	}
	if cfg.UseTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec
	}
	client.Transport = transport
	return &client
}

// restPayload turns flat params into the JSON body the REST service
// expects for /print and action commands.
func restPayload(params map[string]string) map[string]any {
	payload := make(map[string]any, len(params))
	var query []string
	for _, key := range sortedKeys(params) {
		value := params[key]
		name := strings.TrimPrefix(strings.TrimSpace(key), "=")
		switch {
		case name == "":
			continue
		case strings.HasPrefix(name, "?"):
			query = append(query, strings.TrimPrefix(name, "?")+"="+value)
		case name == ".proplist":
			payload[name] = splitList(value)
		default:
			payload[name] = value
		}
	}
	if len(query) > 0 {
		payload[".query"] = query
	}
	return payload
}

func decodeReply(raw []byte) *Reply {
	out := &Reply{Records: []model.Record{}}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return out
	}

	var decoded any
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&decoded); err != nil {
		return out
	}

	switch value := decoded.(type) {
	case []any:
		out.Sequence = true
		for _, item := range value {
			if row, ok := item.(map[string]any); ok {
				out.Records = append(out.Records, model.Record(row))
			}
		}
	case map[string]any:
		if ret, ok := value["ret"]; ok && len(value) == 1 {
			out.Ret = strings.TrimSpace(fmt.Sprint(ret))
			return out
		}
		out.Records = append(out.Records, model.Record(value))
	}
	return out
}

// restErrorMessage prefers the router's "detail"/"message" over the raw body.
func restErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
