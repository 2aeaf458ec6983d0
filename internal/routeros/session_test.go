package routeros_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
	"github.com/micro-ha/hotspot-monitor/internal/routeros/mock"
)

func newManager(d routeros.Dialer) *routeros.Manager {
	return routeros.NewManager(d, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func validConfig() model.RouterConfig {
	return model.RouterConfig{Host: "192.168.88.1", Port: 8728, Username: "admin", Password: "secret"}
}

func TestManagerConnectDisconnect(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)

	if manager.IsConnected() {
		t.Fatalf("new manager should be idle")
	}
	session, err := manager.Connect(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if session.Address != "192.168.88.1:8728" {
		t.Fatalf("Address = %q, want 192.168.88.1:8728", session.Address)
	}
	if !manager.IsConnected() {
		t.Fatalf("IsConnected = false after Connect")
	}
	current, ok := manager.Current()
	if !ok || current.Config.Password != "" || current.ConnectedAt.IsZero() {
		t.Fatalf("Current() = %+v, %v", current, ok)
	}

	manager.Disconnect(context.Background())
	if manager.IsConnected() {
		t.Fatalf("IsConnected = true after Disconnect")
	}
	if got := dialer.Conns[0].(*mock.Client).ClosedCount(); got != 1 {
		t.Fatalf("closed = %d, want 1", got)
	}

	// idle disconnect is a no-op
	manager.Disconnect(context.Background())
}

func TestManagerConnectTwiceReplacesSession(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)

	if _, err := manager.Connect(context.Background(), validConfig()); err != nil {
		t.Fatalf("first Connect returned error: %v", err)
	}
	second := validConfig()
	second.Host = "192.168.88.2"
	if _, err := manager.Connect(context.Background(), second); err != nil {
		t.Fatalf("second Connect returned error: %v", err)
	}

	if len(dialer.Conns) != 2 {
		t.Fatalf("dials = %d, want 2", len(dialer.Conns))
	}
	first := dialer.Conns[0].(*mock.Client)
	latest := dialer.Conns[1].(*mock.Client)
	if first.ClosedCount() != 1 {
		t.Fatalf("first conn closed = %d, want 1", first.ClosedCount())
	}
	if latest.ClosedCount() != 0 {
		t.Fatalf("second conn closed = %d, want 0", latest.ClosedCount())
	}

	if _, err := manager.Execute(context.Background(), "/system/identity/print", nil); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(first.CallsSnapshot()) != 0 || len(latest.CallsSnapshot()) != 1 {
		t.Fatalf("command went to the wrong session")
	}
	current, _ := manager.Current()
	if current.Config.Host != "192.168.88.2" {
		t.Fatalf("current host = %q, want 192.168.88.2", current.Config.Host)
	}
}

func TestManagerExecuteWhileIdle(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)

	_, err := manager.Execute(context.Background(), "/ip/hotspot/active/print", nil)
	if !errors.Is(err, routeros.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	var cmdErr *routeros.CommandError
	if errors.As(err, &cmdErr) {
		t.Fatalf("idle execute must not produce a CommandError")
	}
}

func TestManagerFailedConnectLeavesNoSession(t *testing.T) {
	router := mock.NewRouter()
	router.Username = "admin"
	router.Password = "secret"
	manager := newManager(router.Dialer())

	if _, err := manager.Connect(context.Background(), validConfig()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	bad := validConfig()
	bad.Password = "wrong"
	_, err := manager.Connect(context.Background(), bad)
	var authErr *routeros.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if !authErr.Rejected() {
		t.Fatalf("expected credential rejection")
	}
	if authErr.Address != "192.168.88.1:8728" || authErr.Username != "admin" {
		t.Fatalf("unexpected error fields: %+v", authErr)
	}
	if manager.IsConnected() {
		t.Fatalf("failed connect must leave no session")
	}
	if router.Closed() != 1 {
		t.Fatalf("previous session closed = %d, want 1", router.Closed())
	}
}

func TestManagerConnectValidation(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)

	cfg := validConfig()
	cfg.Host = ""
	_, err := manager.Connect(context.Background(), cfg)
	var verr *routeros.ValidationError
	if !errors.As(err, &verr) || verr.Field != "host" {
		t.Fatalf("err = %v, want host ValidationError", err)
	}
	if len(dialer.Dials()) != 0 {
		t.Fatalf("invalid config must not dial")
	}
}

func TestManagerInvalidConfigKeepsCurrentSession(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)
	if _, err := manager.Connect(context.Background(), validConfig()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	cfg := validConfig()
	cfg.Password = ""
	_, err := manager.Connect(context.Background(), cfg)
	var verr *routeros.ValidationError
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("err = %v, want password ValidationError", err)
	}
	if !manager.IsConnected() {
		t.Fatalf("IsConnected = false, want the first session kept")
	}
	if got := dialer.Conns[0].(*mock.Client).ClosedCount(); got != 0 {
		t.Fatalf("first session closed %d times, want 0", got)
	}
	if len(dialer.Dials()) != 1 {
		t.Fatalf("dials = %d, want 1", len(dialer.Dials()))
	}
}

func TestManagerDisconnectSwallowsCloseError(t *testing.T) {
	dialer := &mock.Dialer{NewConn: func(cfg routeros.Config) routeros.Conn {
		return &mock.Client{CloseErr: errors.New("broken pipe")}
	}}
	manager := newManager(dialer)

	if _, err := manager.Connect(context.Background(), validConfig()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	manager.Disconnect(context.Background())
	if manager.IsConnected() {
		t.Fatalf("session must be cleared even when close fails")
	}
}

func TestManagerExecuteWrapsCommandError(t *testing.T) {
	router := mock.NewRouter()
	router.Fail("/ip/hotspot/user/print", errors.New("connection reset by peer"))
	manager := newManager(router.Dialer())

	if _, err := manager.Connect(context.Background(), validConfig()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	_, err := manager.Execute(context.Background(), "/ip/hotspot/user/print", nil)
	var cmdErr *routeros.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Path != "/ip/hotspot/user/print" {
		t.Fatalf("err = %v, want CommandError for path", err)
	}
}

func TestManagerTransportDefaults(t *testing.T) {
	dialer := &mock.Dialer{}
	manager := newManager(dialer)

	cfg := validConfig()
	cfg.Port = 0
	cfg.Transport = model.TransportREST
	cfg.SSL = true
	if _, err := manager.Connect(context.Background(), cfg); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	got := dialer.Dials()[0]
	if got.Transport != model.TransportREST || got.BaseURL != "https://192.168.88.1/rest" || !got.UseTLS {
		t.Fatalf("dial config = %+v", got)
	}
	if got.Timeout != time.Second {
		t.Fatalf("Timeout = %v, want 1s", got.Timeout)
	}
}
