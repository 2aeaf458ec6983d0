package routeros

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

// TransportDialer picks the API or REST dialer from Config.Transport.
type TransportDialer struct {
	API  Dialer
	REST Dialer
}

// NewDialer wires both transports.
func NewDialer(httpClient *http.Client, logger *slog.Logger) *TransportDialer {
	return &TransportDialer{
		API:  NewAPIDialer(logger),
		REST: NewRESTDialer(httpClient, logger),
	}
}

func (d *TransportDialer) Dial(ctx context.Context, cfg Config) (Conn, error) {
	if cfg.Transport == model.TransportREST {
		return d.REST.Dial(ctx, cfg)
	}
	return d.API.Dial(ctx, cfg)
}
