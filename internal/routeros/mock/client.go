// Package mock provides programmable router transports for tests.
package mock

import (
	"context"
	"sync"

	goros "github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

// Call stores one Run invocation.
type Call struct {
	Path   string
	Params map[string]string
}

// Client is a programmable routeros.Conn.
type Client struct {
	mu       sync.Mutex
	RunFunc  func(ctx context.Context, path string, params map[string]string) (*routeros.Reply, error)
	CloseErr error
	Calls    []Call
	Closed   int
}

func (c *Client) Run(ctx context.Context, path string, params map[string]string) (*routeros.Reply, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, Call{Path: path, Params: copyParams(params)})
	run := c.RunFunc
	c.mu.Unlock()

	if run == nil {
		return &routeros.Reply{Records: []model.Record{}, Sequence: true}, nil
	}
	return run(ctx, path, params)
}

func (c *Client) Close(ctx context.Context) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed++
	return c.CloseErr
}

// CallsSnapshot returns copy of accumulated calls.
func (c *Client) CallsSnapshot() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.Calls))
	copy(out, c.Calls)
	return out
}

// ClosedCount returns how many times Close was called.
func (c *Client) ClosedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Closed
}

// Dialer hands out connections from NewConn, or fails with Err.
type Dialer struct {
	mu      sync.Mutex
	NewConn func(cfg routeros.Config) routeros.Conn
	Err     error
	Configs []routeros.Config
	Conns   []routeros.Conn
}

func (d *Dialer) Dial(ctx context.Context, cfg routeros.Config) (routeros.Conn, error) {
	_ = ctx
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Configs = append(d.Configs, cfg)
	if d.Err != nil {
		return nil, d.Err
	}
	var conn routeros.Conn
	if d.NewConn != nil {
		conn = d.NewConn(cfg)
	} else {
		conn = &Client{}
	}
	d.Conns = append(d.Conns, conn)
	return conn, nil
}

// Dials returns the configs passed to Dial so far.
func (d *Dialer) Dials() []routeros.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]routeros.Config, len(d.Configs))
	copy(out, d.Configs)
	return out
}

// Reply creates a RouterOS API reply from map rows.
func Reply(rows ...map[string]string) *goros.Reply {
	re := make([]*proto.Sentence, 0, len(rows))
	for _, row := range rows {
		pairs := make([]proto.Pair, 0, len(row))
		copied := make(map[string]string, len(row))
		for key, value := range row {
			pairs = append(pairs, proto.Pair{Key: key, Value: value})
			copied[key] = value
		}
		re = append(re, &proto.Sentence{Word: "!re", Map: copied, List: pairs})
	}
	return &goros.Reply{Re: re, Done: &proto.Sentence{Word: "!done", Map: map[string]string{}}}
}

func copyParams(params map[string]string) map[string]string {
	if params == nil {
		return nil
	}
	out := make(map[string]string, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}
