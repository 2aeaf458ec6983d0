// Package service implements the login, logout and dashboard flows on top
// of the hotspot facade and writes their outcome into the state store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
	"github.com/micro-ha/hotspot-monitor/internal/store"
)

// ErrNoSavedConfig is returned by Reconnect when nothing was persisted.
var ErrNoSavedConfig = errors.New("no saved router config")

// Sessions is the part of routeros.Manager the flows need.
type Sessions interface {
	Connect(ctx context.Context, cfg model.RouterConfig) (*routeros.Session, error)
	Disconnect(ctx context.Context)
	IsConnected() bool
}

// Hotspot is the part of hotspot.Service the flows need.
type Hotspot interface {
	ListActiveUsers(ctx context.Context) ([]model.HotspotUser, error)
	GetSystemInfo(ctx context.Context) (model.RouterSystemInfo, error)
	LogoutUser(ctx context.Context, sessionID string) error
	CreateUser(ctx context.Context, in model.CreateUserInput) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type Service struct {
	sessions Sessions
	hotspot  Hotspot
	store    *store.Store
	logger   *slog.Logger

	// mu keeps multi-step flows from interleaving.
	mu sync.Mutex
}

func New(sessions Sessions, hotspot Hotspot, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sessions: sessions, hotspot: hotspot, store: st, logger: logger.With("component", "service")}
}

// Login connects, loads the dashboard data and records the session.
func (s *Service) Login(ctx context.Context, cfg model.RouterConfig) (*routeros.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx, cfg)
}

func (s *Service) login(ctx context.Context, cfg model.RouterConfig) (*routeros.Session, error) {
	s.store.SetConnectionError("")
	s.store.SetConnectionStatus(model.ConnectionStatusConnecting)

	session, err := s.sessions.Connect(ctx, cfg)
	if err != nil {
		return nil, s.loginFailed(err)
	}

	info, err := s.hotspot.GetSystemInfo(ctx)
	if err != nil {
		s.sessions.Disconnect(ctx)
		return nil, s.loginFailed(err)
	}
	s.store.SetRouterInfo(&info)

	users, err := s.hotspot.ListActiveUsers(ctx)
	if err != nil {
		s.sessions.Disconnect(ctx)
		return nil, s.loginFailed(err)
	}
	s.store.SetActiveUsers(users)

	saved := session.Config
	s.store.SetRouterConfig(&saved)
	s.store.SetConnectionStatus(model.ConnectionStatusConnected)
	s.logger.Info("login succeeded", "address", session.Address, "identity", info.Identity, "active_users", len(users))
	return session, nil
}

func (s *Service) loginFailed(err error) error {
	s.store.SetConnectionStatus(model.ConnectionStatusError)
	s.store.SetConnectionError(ErrorMessage(err))
	s.logger.Warn("login failed", "err", err)
	return err
}

// Logout closes the session and forgets all state, including the saved config.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Disconnect(ctx)
	s.store.ClearAll()
	s.logger.Info("logged out")
}

// Reconnect logs in again with the persisted config.
func (s *Service) Reconnect(ctx context.Context) (*routeros.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.store.RouterConfig()
	if !ok {
		return nil, ErrNoSavedConfig
	}
	return s.login(ctx, cfg)
}

// Refresh reloads active users and system info in parallel.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessions.IsConnected() {
		return routeros.ErrNotConnected
	}

	var (
		users []model.HotspotUser
		info  model.RouterSystemInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.store.SetLoadingUsers(true)
		defer s.store.SetLoadingUsers(false)
		var err error
		users, err = s.hotspot.ListActiveUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		info, err = s.hotspot.GetSystemInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	s.store.SetActiveUsers(users)
	s.store.SetRouterInfo(&info)
	return nil
}

// LogoutUser kicks a hotspot client and re-lists active users.
func (s *Service) LogoutUser(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hotspot.LogoutUser(ctx, sessionID); err != nil {
		return err
	}
	s.store.RemoveUser(sessionID)
	return s.reloadUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, in model.CreateUserInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.hotspot.CreateUser(ctx, in)
	if err != nil {
		return "", err
	}
	return id, s.reloadUsers(ctx)
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hotspot.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return s.reloadUsers(ctx)
}

func (s *Service) reloadUsers(ctx context.Context) error {
	s.store.SetLoadingUsers(true)
	defer s.store.SetLoadingUsers(false)
	users, err := s.hotspot.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("reload active users: %w", err)
	}
	s.store.SetActiveUsers(users)
	return nil
}
