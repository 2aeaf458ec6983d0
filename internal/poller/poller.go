package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

// Refresher reloads dashboard data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Poller struct {
	service   Refresher
	interval  time.Duration
	refreshCh chan struct{}
	logger    *slog.Logger
}

func New(svc Refresher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		service:   svc,
		interval:  interval,
		refreshCh: make(chan struct{}, 1),
		logger:    logger.With("component", "poller"),
	}
}

// TriggerRefresh asks for an immediate refresh; pending triggers coalesce.
func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
		if err := p.service.Refresh(ctx); err != nil {
			if errors.Is(err, routeros.ErrNotConnected) {
				p.logger.Debug("refresh skipped; not connected")
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("refresh failed", "err", err)
		}
	}
}
