package routeros

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

// Session is the live link owned by a Manager.
type Session struct {
	Config      model.RouterConfig
	Address     string
	ConnectedAt time.Time

	conn Conn
}

// Manager owns at most one active router session.
type Manager struct {
	dialer  Dialer
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	// lifecycle serializes Connect and Disconnect.
	lifecycle sync.Mutex
	mu        sync.RWMutex
	current   *Session
}

// NewManager builds a Manager; timeout bounds every remote command.
func NewManager(dialer Dialer, logger *slog.Logger, timeout time.Duration) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Manager{
		dialer:  dialer,
		logger:  logger.With("component", "routeros"),
		timeout: timeout,
		now:     time.Now,
	}
}

// Connect replaces any active session with a new one for cfg. An invalid
// cfg is rejected before the current session is touched.
func (m *Manager) Connect(ctx context.Context, cfg model.RouterConfig) (*Session, error) {
	normalized, err := normalizeConfig(cfg, m.timeout)
	if err != nil {
		return nil, err
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.closeCurrent(ctx)

	target := normalized.Target()
	conn, err := m.dialer.Dial(ctx, normalized)
	if err != nil {
		m.logger.Warn("router login failed", "address", target, "transport", normalized.Transport, "err", err)
		return nil, &AuthenticationError{Address: target, Username: normalized.Username, Err: err}
	}

	stored := cfg
	stored.Transport = normalized.Transport
	session := &Session{
		Config:      stored,
		Address:     target,
		ConnectedAt: m.now().UTC(),
		conn:        conn,
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	m.logger.Info("router connected", "address", target, "transport", normalized.Transport)
	return session, nil
}

// Disconnect closes the active session, if any. Close failures are logged.
func (m *Manager) Disconnect(ctx context.Context) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.closeCurrent(ctx)
}

func (m *Manager) closeCurrent(ctx context.Context) {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.mu.Unlock()

	if session == nil {
		return
	}
	if err := session.conn.Close(ctx); err != nil {
		m.logger.Warn("router disconnect failed", "address", session.Address, "err", err)
		return
	}
	m.logger.Info("router disconnected", "address", session.Address)
}

// Execute runs one command on the current session.
func (m *Manager) Execute(ctx context.Context, path string, params map[string]string) (*Reply, error) {
	m.mu.RLock()
	session := m.current
	m.mu.RUnlock()
	if session == nil {
		return nil, ErrNotConnected
	}

	reply, err := session.conn.Run(ctx, path, params)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			return nil, err
		}
		m.logger.Debug("router command failed", "path", path, "err", err)
		return nil, &CommandError{Path: path, Err: err}
	}
	return reply, nil
}

// IsConnected reports whether a session is active.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Current returns a copy of the active session without its transport.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	out := *m.current
	out.conn = nil
	out.Config = out.Config.Redacted()
	return out, true
}
