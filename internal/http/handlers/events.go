package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// State returns the current store snapshot.
func (a *API) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, redactedSnapshot(a.store))
}

// Events streams a store snapshot over a websocket on every change.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	changes, cancel := a.store.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					a.logger.Debug("websocket read failed", "err", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := a.sendSnapshot(conn); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-changes:
			if err := a.sendSnapshot(conn); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (a *API) sendSnapshot(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(redactedSnapshot(a.store)); err != nil {
		a.logger.Debug("websocket write failed", "err", err)
		return err
	}
	return nil
}

func redactedSnapshot(st StateStore) any {
	snapshot := st.Snapshot()
	if snapshot.RouterConfig != nil {
		cfg := snapshot.RouterConfig.Redacted()
		snapshot.RouterConfig = &cfg
	}
	return snapshot
}
