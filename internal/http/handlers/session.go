package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

type sessionView struct {
	Status      model.ConnectionStatus `json:"status"`
	Connected   bool                   `json:"connected"`
	Error       string                 `json:"error,omitempty"`
	Address     string                 `json:"address,omitempty"`
	Config      *model.RouterConfig    `json:"config,omitempty"`
	ConnectedAt *time.Time             `json:"connected_at,omitempty"`
}

// GetSession reports the connection status and the redacted config.
func (a *API) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.sessionView())
}

// Login opens a router session from a RouterConfig payload.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.RouterConfig
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if payload.Transport == "" {
		payload.Transport = a.defaultTransport
	} else {
		payload.Transport = model.ParseTransport(string(payload.Transport))
	}

	if _, err := a.flows.Login(r.Context(), payload); err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.sessionView())
}

// Logout closes the session and clears all client state.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.flows.Logout(r.Context())
	writeJSON(w, http.StatusOK, a.sessionView())
}

func (a *API) sessionView() sessionView {
	st := a.store.Snapshot()
	view := sessionView{
		Status:    st.ConnectionStatus,
		Connected: a.sessions.IsConnected(),
		Error:     st.ConnectionError,
	}
	if st.RouterConfig != nil {
		cfg := st.RouterConfig.Redacted()
		view.Config = &cfg
	}
	if current, ok := a.sessions.Current(); ok {
		connectedAt := current.ConnectedAt
		view.Address = current.Address
		view.Config = &current.Config
		view.ConnectedAt = &connectedAt
	}
	return view
}
