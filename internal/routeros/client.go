package routeros

import (
	"context"
	"crypto/tls"
	"log/slog"
	"sync"
	"time"

	goros "github.com/go-routeros/routeros/v3"
)

// APIDialer opens sessions over the binary RouterOS API.
type APIDialer struct {
	logger *slog.Logger

	dialFn  func(ctx context.Context, cfg Config) (*goros.Client, error)
	runFn   func(ctx context.Context, conn *goros.Client, cmd string, args ...string) (*goros.Reply, error)
	closeFn func(conn *goros.Client) error
}

// NewAPIDialer creates a dialer backed by go-routeros.
func NewAPIDialer(logger *slog.Logger) *APIDialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIDialer{
		logger:  logger,
		dialFn:  dialRouterOS,
		runFn:   runRouterOS,
		closeFn: closeRouterOS,
	}
}

// Dial connects and logs in; the login handshake is part of the dial.
func (d *APIDialer) Dial(ctx context.Context, cfg Config) (Conn, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.dialFn(dialCtx, cfg)
	if err != nil {
		return nil, err
	}
	return &apiConn{
		conn:    conn,
		timeout: timeout,
		logger:  d.logger,
		runFn:   d.runFn,
		closeFn: d.closeFn,
	}, nil
}

type apiConn struct {
	// mu serializes commands: a synchronous go-routeros client reads replies
	// in order and cannot interleave sentences.
	mu      sync.Mutex
	conn    *goros.Client
	timeout time.Duration
	logger  *slog.Logger
	closed  bool

	runFn   func(ctx context.Context, conn *goros.Client, cmd string, args ...string) (*goros.Reply, error)
	closeFn func(conn *goros.Client) error
}

func (c *apiConn) Run(ctx context.Context, path string, params map[string]string) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrNotConnected
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.runFn(runCtx, c.conn, path, mapParams(params)...)
	if err != nil {
		return nil, err
	}
	return mapReply(reply), nil
}

func (c *apiConn) Close(ctx context.Context) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.closeFn(c.conn)
}

func dialRouterOS(ctx context.Context, cfg Config) (*goros.Client, error) {
	if cfg.UseTLS {
		tlsConfig := &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec
		return goros.DialTLSContext(ctx, cfg.Address, cfg.Username, cfg.Password, tlsConfig)
	}
	return goros.DialContext(ctx, cfg.Address, cfg.Username, cfg.Password)
}

func runRouterOS(ctx context.Context, conn *goros.Client, cmd string, args ...string) (*goros.Reply, error) {
	sentence := make([]string, 0, len(args)+1)
	sentence = append(sentence, cmd)
	sentence = append(sentence, args...)
	return conn.RunContext(ctx, sentence...)
}

func closeRouterOS(conn *goros.Client) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}
