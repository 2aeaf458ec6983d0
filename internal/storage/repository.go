package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

// Namespace is the app_state key holding the persisted client state.
const Namespace = "mikhmon-storage"

// persistedState is the JSON document stored under Namespace. Only the
// router config survives restarts.
type persistedState struct {
	RouterConfig *model.RouterConfig `json:"router_config,omitempty"`
}

// LoadRouterConfig returns the saved config, or nil when none is stored or
// the stored document cannot be decoded.
func (r *Repository) LoadRouterConfig(ctx context.Context) (*model.RouterConfig, error) {
	raw, ok, err := r.loadState(ctx, Namespace)
	if err != nil || !ok {
		return nil, err
	}
	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.logger.Warn("discarding undecodable persisted state", "key", Namespace, "err", err)
		return nil, nil
	}
	return state.RouterConfig, nil
}

func (r *Repository) SaveRouterConfig(ctx context.Context, cfg model.RouterConfig) error {
	raw, err := json.Marshal(persistedState{RouterConfig: &cfg})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return r.saveState(ctx, Namespace, string(raw))
}

func (r *Repository) ClearRouterConfig(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, Namespace); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

func (r *Repository) loadState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load state %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) saveState(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state(key, value, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}
