package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
	"github.com/micro-ha/hotspot-monitor/internal/service"
	"github.com/micro-ha/hotspot-monitor/internal/store"
)

// Poller triggers asynchronous dashboard refresh.
type Poller interface {
	TriggerRefresh()
}

// Flows are the state-changing operations of service.Service.
type Flows interface {
	Login(ctx context.Context, cfg model.RouterConfig) (*routeros.Session, error)
	Logout(ctx context.Context)
	LogoutUser(ctx context.Context, sessionID string) error
	CreateUser(ctx context.Context, in model.CreateUserInput) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Hotspot is the read side of hotspot.Service.
type Hotspot interface {
	ListActiveUsers(ctx context.Context) ([]model.HotspotUser, error)
	GetUserBySessionID(ctx context.Context, sessionID string) (model.HotspotUser, bool, error)
	ListAllUsers(ctx context.Context) ([]model.UserProfile, error)
	ListProfiles(ctx context.Context) ([]string, error)
	GetSystemInfo(ctx context.Context) (model.RouterSystemInfo, error)
}

// Sessions exposes the current router session.
type Sessions interface {
	IsConnected() bool
	Current() (routeros.Session, bool)
}

// StateStore is the read side of store.Store.
type StateStore interface {
	Snapshot() store.State
	Subscribe() (<-chan struct{}, func())
}

// Deps lists the collaborators of API.
type Deps struct {
	Flows            Flows
	Hotspot          Hotspot
	Sessions         Sessions
	Store            StateStore
	Poller           Poller
	DefaultTransport model.Transport
	Logger           *slog.Logger
}

// API groups HTTP handlers and dependencies.
type API struct {
	flows            Flows
	hotspot          Hotspot
	sessions         Sessions
	store            StateStore
	poller           Poller
	defaultTransport model.Transport
	logger           *slog.Logger
}

// New creates HTTP handlers with explicit dependencies.
func New(deps Deps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := deps.DefaultTransport
	if transport == "" {
		transport = model.TransportAPI
	}
	return &API{
		flows:            deps.Flows,
		hotspot:          deps.Hotspot,
		sessions:         deps.Sessions,
		store:            deps.Store,
		poller:           deps.Poller,
		defaultTransport: transport,
		logger:           logger.With("component", "http"),
	}
}

// Logger returns request logger used by HTTP middleware.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

// Health reports service liveness and router session status.
func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "connected": a.sessions.IsConnected()})
}

// Refresh triggers immediate dashboard refresh asynchronously.
func (a *API) Refresh(w http.ResponseWriter, _ *http.Request) {
	a.poller.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// writeFailure maps domain errors onto HTTP status codes.
func (a *API) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *routeros.ValidationError
		authErr       *routeros.AuthenticationError
		commandErr    *routeros.CommandError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "invalid_request", validationErr.Error())
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, "authentication_failed", service.ErrorMessage(err))
	case errors.Is(err, routeros.ErrNotConnected):
		writeError(w, http.StatusConflict, "not_connected", "Not connected to a router")
	case errors.As(err, &commandErr):
		a.logger.Warn("router command failed", "path", commandErr.Path, "request_path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadGateway, "router_command_failed", err.Error())
	default:
		a.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
