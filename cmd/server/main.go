package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/config"
	"github.com/micro-ha/hotspot-monitor/internal/hotspot"
	httpapi "github.com/micro-ha/hotspot-monitor/internal/http"
	"github.com/micro-ha/hotspot-monitor/internal/http/handlers"
	"github.com/micro-ha/hotspot-monitor/internal/logging"
	"github.com/micro-ha/hotspot-monitor/internal/poller"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
	"github.com/micro-ha/hotspot-monitor/internal/service"
	"github.com/micro-ha/hotspot-monitor/internal/storage"
	"github.com/micro-ha/hotspot-monitor/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DBDir(), 0o755); err != nil {
		logger.Error("failed to create db directory", "err", err)
		os.Exit(1)
	}

	repo, err := storage.New(ctx, cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	state := store.New(repo, logger)
	if err := state.Load(ctx); err != nil {
		logger.Warn("starting without persisted state", "err", err)
	}

	dialer := routeros.NewDialer(&http.Client{Timeout: cfg.CommandTimeout}, logger)
	manager := routeros.NewManager(dialer, logger, cfg.CommandTimeout)
	defer manager.Disconnect(context.Background())

	facade := hotspot.New(manager, logger)
	svc := service.New(manager, facade, state, logger)
	dashboardPoller := poller.New(svc, cfg.RefreshInterval, logger)

	if cfg.AutoReconnect {
		go reconnect(ctx, svc, logger)
	}
	go dashboardPoller.Run(ctx)

	api := handlers.New(handlers.Deps{
		Flows:            svc,
		Hotspot:          facade,
		Sessions:         manager,
		Store:            state,
		Poller:           dashboardPoller,
		DefaultTransport: cfg.DefaultTransport,
		Logger:           logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", httpServer.Addr, "transport", cfg.DefaultTransport, "refresh_interval", cfg.RefreshInterval.String())
	if err := httpapi.RunServer(ctx, httpServer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// reconnect restores the session saved by a previous run.
func reconnect(ctx context.Context, svc *service.Service, logger *slog.Logger) {
	session, err := svc.Reconnect(ctx)
	switch {
	case errors.Is(err, service.ErrNoSavedConfig):
		logger.Info("no saved router session")
	case err != nil:
		logger.Warn("saved router session could not be restored", "err", err)
	default:
		logger.Info("saved router session restored", "address", session.Address)
	}
}
