package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/hotspot"
	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
	"github.com/micro-ha/hotspot-monitor/internal/routeros/mock"
	"github.com/micro-ha/hotspot-monitor/internal/storage"
	"github.com/micro-ha/hotspot-monitor/internal/store"
)

type fixture struct {
	router  *mock.Router
	manager *routeros.Manager
	store   *store.Store
	svc     *Service
}

func newFixture(t *testing.T, persister store.Persister) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := mock.NewRouter()
	router.Username = "admin"
	router.Password = "secret"

	manager := routeros.NewManager(router.Dialer(), logger, time.Second)
	st := store.New(persister, logger)
	svc := New(manager, hotspot.New(manager, logger), st, logger)
	t.Cleanup(func() { manager.Disconnect(context.Background()) })
	return &fixture{router: router, manager: manager, store: st, svc: svc}
}

func loginConfig() model.RouterConfig {
	return model.RouterConfig{Host: "192.168.88.1", Port: 8728, Username: "admin", Password: "secret"}
}

func TestLoginPopulatesStore(t *testing.T) {
	f := newFixture(t, nil)

	session, err := f.svc.Login(context.Background(), loginConfig())
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Address != "192.168.88.1:8728" {
		t.Fatalf("Address = %q", session.Address)
	}

	st := f.store.Snapshot()
	if st.ConnectionStatus != model.ConnectionStatusConnected || st.ConnectionError != "" {
		t.Fatalf("status = %q error = %q", st.ConnectionStatus, st.ConnectionError)
	}
	if st.RouterInfo == nil || st.RouterInfo.Identity != "MikroTik" {
		t.Fatalf("RouterInfo = %+v", st.RouterInfo)
	}
	if len(st.ActiveUsers) != 1 || st.ActiveUsers[0].Name != "alice" {
		t.Fatalf("ActiveUsers = %+v", st.ActiveUsers)
	}
	if st.RouterConfig == nil || st.RouterConfig.Transport != model.TransportAPI || st.RouterConfig.Password != "secret" {
		t.Fatalf("RouterConfig = %+v", st.RouterConfig)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	f := newFixture(t, nil)
	cfg := loginConfig()
	cfg.Password = "wrong"

	_, err := f.svc.Login(context.Background(), cfg)
	var authErr *routeros.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	st := f.store.Snapshot()
	if st.ConnectionStatus != model.ConnectionStatusError {
		t.Fatalf("status = %q, want error", st.ConnectionStatus)
	}
	if st.ConnectionError != msgAuth {
		t.Fatalf("ConnectionError = %q, want %q", st.ConnectionError, msgAuth)
	}
	if st.RouterConfig != nil {
		t.Fatalf("failed login must not store config")
	}
}

func TestLoginDisconnectsWhenLaterStepFails(t *testing.T) {
	f := newFixture(t, nil)
	f.router.Fail("/ip/hotspot/active/print", errors.New("no such command"))

	if _, err := f.svc.Login(context.Background(), loginConfig()); err == nil {
		t.Fatalf("expected Login error")
	}
	if f.manager.IsConnected() {
		t.Fatalf("session opened during a failed login must be closed")
	}
	if f.router.Closed() != 1 {
		t.Fatalf("closed = %d, want 1", f.router.Closed())
	}
	if got := f.store.Snapshot().ConnectionStatus; got != model.ConnectionStatusError {
		t.Fatalf("status = %q, want error", got)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.New(ctx, filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("storage.New returned error: %v", err)
	}
	defer repo.Close()
	f := newFixture(t, repo)

	if _, err := f.svc.Login(ctx, loginConfig()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	saved, err := repo.LoadRouterConfig(ctx)
	if err != nil || saved == nil {
		t.Fatalf("config not persisted: %+v, %v", saved, err)
	}

	f.svc.Logout(ctx)
	if f.manager.IsConnected() {
		t.Fatalf("still connected after Logout")
	}
	st := f.store.Snapshot()
	if st.RouterConfig != nil || len(st.ActiveUsers) != 0 || st.ConnectionStatus != model.ConnectionStatusDisconnected {
		t.Fatalf("state after logout: %+v", st)
	}
	saved, err = repo.LoadRouterConfig(ctx)
	if err != nil || saved != nil {
		t.Fatalf("persisted config after logout: %+v, %v", saved, err)
	}
}

func TestReconnectUsesPersistedConfig(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.New(ctx, filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("storage.New returned error: %v", err)
	}
	defer repo.Close()

	f := newFixture(t, repo)
	if _, err := f.svc.Reconnect(ctx); !errors.Is(err, ErrNoSavedConfig) {
		t.Fatalf("err = %v, want ErrNoSavedConfig", err)
	}

	if err := repo.SaveRouterConfig(ctx, loginConfig()); err != nil {
		t.Fatalf("SaveRouterConfig returned error: %v", err)
	}
	if err := f.store.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, err := f.svc.Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect returned error: %v", err)
	}
	if !f.store.IsConnected() {
		t.Fatalf("store not connected after Reconnect")
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.svc.Refresh(ctx); !errors.Is(err, routeros.ErrNotConnected) {
		t.Fatalf("idle Refresh err = %v, want ErrNotConnected", err)
	}
	if _, err := f.svc.Login(ctx, loginConfig()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	f.router.AddActive(model.Record{".id": "*B1", "user": "bob"})
	f.router.Identity = "core-router"
	if err := f.svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	st := f.store.Snapshot()
	if len(st.ActiveUsers) != 2 || st.RouterInfo.Identity != "core-router" || st.LoadingUsers {
		t.Fatalf("state after refresh: %+v", st)
	}
}

func TestUserActionsRelist(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.Login(ctx, loginConfig()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.svc.LogoutUser(ctx, "*A1"); err != nil {
		t.Fatalf("LogoutUser returned error: %v", err)
	}
	for _, user := range f.store.Snapshot().ActiveUsers {
		if user.SessionID == "*A1" {
			t.Fatalf("kicked session still in store")
		}
	}

	id, err := f.svc.CreateUser(ctx, model.CreateUserInput{Username: "bob", Password: "pass1"})
	if err != nil || id == "" {
		t.Fatalf("CreateUser = %q, %v", id, err)
	}
	if err := f.svc.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}

	if _, err := f.svc.CreateUser(ctx, model.CreateUserInput{Username: "x"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "refused", err: &routeros.AuthenticationError{Err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED)}, want: msgRefused},
		{name: "timeout", err: &routeros.AuthenticationError{Err: context.DeadlineExceeded}, want: msgTimeout},
		{name: "rejected", err: &routeros.AuthenticationError{Err: mock.ErrBadCredentials}, want: msgAuth},
		{name: "other auth", err: &routeros.AuthenticationError{Err: errors.New("no route to host")}, want: "no route to host"},
		{name: "validation", err: &routeros.ValidationError{Field: "host", Reason: "is required"}, want: "invalid host: is required"},
		{name: "raw", err: errors.New("something odd"), want: "something odd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorMessage(tc.err); got != tc.want {
				t.Fatalf("ErrorMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
