package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	repo, err := New(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestRouterConfigRoundTripAcrossReopen(t *testing.T) {
	repo, path := newTestRepository(t)
	ctx := context.Background()

	got, err := repo.LoadRouterConfig(ctx)
	if err != nil || got != nil {
		t.Fatalf("empty store LoadRouterConfig = %+v, %v", got, err)
	}

	cfg := model.RouterConfig{Host: "192.168.88.1", Port: 8728, Username: "admin", Password: "secret", Transport: model.TransportAPI}
	if err := repo.SaveRouterConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveRouterConfig returned error: %v", err)
	}
	cfg.Host = "192.168.88.2"
	if err := repo.SaveRouterConfig(ctx, cfg); err != nil {
		t.Fatalf("second SaveRouterConfig returned error: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := New(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	got, err = reopened.LoadRouterConfig(ctx)
	if err != nil {
		t.Fatalf("LoadRouterConfig returned error: %v", err)
	}
	if got == nil || *got != cfg {
		t.Fatalf("LoadRouterConfig = %+v, want %+v", got, cfg)
	}

	if err := reopened.ClearRouterConfig(ctx); err != nil {
		t.Fatalf("ClearRouterConfig returned error: %v", err)
	}
	got, err = reopened.LoadRouterConfig(ctx)
	if err != nil || got != nil {
		t.Fatalf("after clear LoadRouterConfig = %+v, %v", got, err)
	}
}

func TestLoadRouterConfigIgnoresCorruptState(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	if err := repo.saveState(ctx, Namespace, "{not json"); err != nil {
		t.Fatalf("saveState returned error: %v", err)
	}
	got, err := repo.LoadRouterConfig(ctx)
	if err != nil || got != nil {
		t.Fatalf("LoadRouterConfig = %+v, %v, want nil, nil", got, err)
	}
}
