// Package store keeps the client-side session state and notifies
// subscribers when it changes.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

const persistTimeout = 5 * time.Second

// Persister saves the router config between runs.
type Persister interface {
	LoadRouterConfig(ctx context.Context) (*model.RouterConfig, error)
	SaveRouterConfig(ctx context.Context, cfg model.RouterConfig) error
	ClearRouterConfig(ctx context.Context) error
}

// State is a point-in-time copy of the store.
type State struct {
	RouterConfig     *model.RouterConfig     `json:"router_config,omitempty"`
	ConnectionStatus model.ConnectionStatus  `json:"connection_status"`
	ConnectionError  string                  `json:"connection_error,omitempty"`
	RouterInfo       *model.RouterSystemInfo `json:"router_info,omitempty"`
	ActiveUsers      []model.HotspotUser     `json:"active_users"`
	LoadingUsers     bool                    `json:"loading_users"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// IsConnected reports whether the session status is connected.
func (s State) IsConnected() bool {
	return s.ConnectionStatus == model.ConnectionStatusConnected
}

type Store struct {
	mu          sync.RWMutex
	state       State
	persister   Persister
	logger      *slog.Logger
	now         func() time.Time
	subscribers map[int]chan struct{}
	nextSubID   int
}

// New returns an empty, disconnected store. persister may be nil.
func New(persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		persister:   persister,
		logger:      logger.With("component", "store"),
		now:         time.Now,
		subscribers: make(map[int]chan struct{}),
	}
	s.state = initialState()
	return s
}

func initialState() State {
	return State{
		ConnectionStatus: model.ConnectionStatusDisconnected,
		ActiveUsers:      []model.HotspotUser{},
	}
}

// Load restores the persisted router config, if any.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	cfg, err := s.persister.LoadRouterConfig(ctx)
	if err != nil {
		s.logger.Warn("restore persisted state failed", "err", err)
		return err
	}
	if cfg == nil {
		return nil
	}
	s.update(func(st *State) { st.RouterConfig = cfg })
	s.logger.Info("restored router config", "host", cfg.Host, "transport", cfg.Transport)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsConnected()
}

// RouterConfig returns the stored config including the password.
func (s *Store) RouterConfig() (model.RouterConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.RouterConfig == nil {
		return model.RouterConfig{}, false
	}
	return *s.state.RouterConfig, true
}

// SetRouterConfig stores cfg and persists it; nil clears it.
func (s *Store) SetRouterConfig(cfg *model.RouterConfig) {
	var stored *model.RouterConfig
	if cfg != nil {
		copied := *cfg
		stored = &copied
	}
	s.update(func(st *State) { st.RouterConfig = stored })
	s.persist(stored)
}

func (s *Store) SetConnectionStatus(status model.ConnectionStatus) {
	s.update(func(st *State) { st.ConnectionStatus = status })
}

// SetConnectionError stores a user-facing error message; "" clears it.
func (s *Store) SetConnectionError(message string) {
	s.update(func(st *State) { st.ConnectionError = message })
}

func (s *Store) SetRouterInfo(info *model.RouterSystemInfo) {
	var stored *model.RouterSystemInfo
	if info != nil {
		copied := *info
		stored = &copied
	}
	s.update(func(st *State) { st.RouterInfo = stored })
}

func (s *Store) SetActiveUsers(users []model.HotspotUser) {
	copied := append([]model.HotspotUser{}, users...)
	s.update(func(st *State) { st.ActiveUsers = copied })
}

func (s *Store) SetLoadingUsers(loading bool) {
	s.update(func(st *State) { st.LoadingUsers = loading })
}

// UpdateUser replaces the active user with the same session id. Unknown
// sessions are ignored.
func (s *Store) UpdateUser(user model.HotspotUser) {
	s.update(func(st *State) {
		users := make([]model.HotspotUser, len(st.ActiveUsers))
		for i, existing := range st.ActiveUsers {
			if existing.SessionID == user.SessionID {
				existing = user
			}
			users[i] = existing
		}
		st.ActiveUsers = users
	})
}

func (s *Store) RemoveUser(sessionID string) {
	s.update(func(st *State) {
		users := make([]model.HotspotUser, 0, len(st.ActiveUsers))
		for _, existing := range st.ActiveUsers {
			if existing.SessionID != sessionID {
				users = append(users, existing)
			}
		}
		st.ActiveUsers = users
	})
}

// ClearAll resets every field and removes the persisted config.
func (s *Store) ClearAll() {
	s.update(func(st *State) { *st = initialState() })
	s.persist(nil)
}

// Subscribe returns a channel that receives a value after changes and a
// function that stops delivery. Notifications coalesce: a slow reader sees
// one pending signal, then reads the latest Snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.UpdatedAt = s.now().UTC()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Store) persist(cfg *model.RouterConfig) {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if cfg == nil {
		err = s.persister.ClearRouterConfig(ctx)
	} else {
		err = s.persister.SaveRouterConfig(ctx, *cfg)
	}
	if err != nil {
		s.logger.Warn("persist router config failed", "err", err)
	}
}

func cloneState(st State) State {
	out := st
	if st.RouterConfig != nil {
		cfg := *st.RouterConfig
		out.RouterConfig = &cfg
	}
	if st.RouterInfo != nil {
		info := *st.RouterInfo
		out.RouterInfo = &info
	}
	out.ActiveUsers = append([]model.HotspotUser{}, st.ActiveUsers...)
	return out
}
