package routeros

import (
	"context"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

// Reply is the normalized result of one router command.
type Reply struct {
	// Records holds the returned rows.
	Records []model.Record
	// Ret carries the id reported by add-style commands.
	Ret string
	// Sequence is false when the router answered with something other than a list.
	Sequence bool
}

// First returns the first record, or nil.
func (r *Reply) First() model.Record {
	if r == nil || len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Conn is one authenticated transport to a router.
type Conn interface {
	Run(ctx context.Context, path string, params map[string]string) (*Reply, error)
	Close(ctx context.Context) error
}

// Dialer opens and authenticates a Conn.
type Dialer interface {
	Dial(ctx context.Context, cfg Config) (Conn, error)
}
