package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/normalize"
)

type activeUserView struct {
	model.HotspotUser
	BytesInText  string `json:"bytes_in_text"`
	BytesOutText string `json:"bytes_out_text"`
}

func toActiveUserView(user model.HotspotUser) activeUserView {
	return activeUserView{
		HotspotUser:  user,
		BytesInText:  normalize.FormatBytes(user.BytesIn),
		BytesOutText: normalize.FormatBytes(user.BytesOut),
	}
}

type systemView struct {
	model.RouterSystemInfo
	MemoryUsage     string `json:"memory_usage"`
	FreeMemoryText  string `json:"free_memory_text"`
	TotalMemoryText string `json:"total_memory_text"`
}

// ListActiveUsers returns connected hotspot clients.
func (a *API) ListActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.hotspot.ListActiveUsers(r.Context())
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	items := make([]activeUserView, 0, len(users))
	for _, user := range users {
		items = append(items, toActiveUserView(user))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetActiveUser returns one connected client by session id.
func (a *API) GetActiveUser(w http.ResponseWriter, r *http.Request, sessionID string) {
	user, ok, err := a.hotspot.GetUserBySessionID(r.Context(), sessionID)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Active session not found")
		return
	}
	writeJSON(w, http.StatusOK, toActiveUserView(user))
}

// LogoutActiveUser disconnects one hotspot client.
func (a *API) LogoutActiveUser(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := a.flows.LogoutUser(r.Context(), sessionID); err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListUsers returns all registered hotspot accounts.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.hotspot.ListAllUsers(r.Context())
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

// CreateUser adds a hotspot account.
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	id, err := a.flows.CreateUser(r.Context(), payload)
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
}

// DeleteUser removes a hotspot account.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	if err := a.flows.DeleteUser(r.Context(), userID); err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListProfiles returns profile names; it degrades to ["default"].
func (a *API) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.hotspot.ListProfiles(r.Context())
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": profiles})
}

// SystemInfo returns the device health snapshot.
func (a *API) SystemInfo(w http.ResponseWriter, r *http.Request) {
	info, err := a.hotspot.GetSystemInfo(r.Context())
	if err != nil {
		a.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, systemView{
		RouterSystemInfo: info,
		MemoryUsage:      normalize.MemoryUsage(info),
		FreeMemoryText:   normalize.FormatBytes(info.FreeMemory),
		TotalMemoryText:  normalize.FormatBytes(info.TotalMemory),
	})
}
