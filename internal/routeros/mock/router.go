package mock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

// ErrBadCredentials mimics the router's login rejection text.
var ErrBadCredentials = errors.New("invalid user name or password (6)")

// Router is an in-memory hotspot that answers the commands the facade issues.
type Router struct {
	mu sync.Mutex

	Username string
	Password string

	Identity string
	Resource model.Record
	Active   []model.Record
	Users    []model.Record
	Profiles []string

	failures map[string]error
	nextID   int
	dials    int
	closed   int
}

// NewRouter returns a router with one active session and the default profile.
func NewRouter() *Router {
	return &Router{
		Identity: "MikroTik",
		Resource: model.Record{
			"uptime":            "1w2d3h4m5s",
			"version":           "7.14.2 (stable)",
			"architecture-name": "arm64",
			"board-name":        "hAP ax2",
			"cpu-frequency":     "864",
			"cpu-count":         "4",
			"cpu-load":          "3",
			"free-memory":       "786432000",
			"total-memory":      "1073741824",
			"free-hdd-space":    "100663296",
			"total-hdd-space":   "134217728",
		},
		Active: []model.Record{
			{
				".id":         "*A1",
				"user":        "alice",
				"address":     "10.5.50.10",
				"mac-address": "AA:BB:CC:00:00:01",
				"uptime":      "12m3s",
				"bytes-in":    "1048576",
				"bytes-out":   "2048",
				"packets-in":  "900",
				"packets-out": "12",
				"login-by":    "http-chap",
			},
		},
		Profiles: []string{"default", "1h"},
		nextID:   1,
	}
}

// Fail makes every later call to path return err; nil clears it.
func (r *Router) Fail(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures == nil {
		r.failures = make(map[string]error)
	}
	if err == nil {
		delete(r.failures, path)
		return
	}
	r.failures[path] = err
}

// AddActive registers a connected hotspot client.
func (r *Router) AddActive(rec model.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Active = append(r.Active, cloneRecord(rec))
}

// Dialer returns a routeros.Dialer whose connections talk to r.
func (r *Router) Dialer() routeros.Dialer {
	return dialFunc(func(ctx context.Context, cfg routeros.Config) (routeros.Conn, error) {
		_ = ctx
		r.mu.Lock()
		defer r.mu.Unlock()
		r.dials++
		if r.Username != "" && (cfg.Username != r.Username || cfg.Password != r.Password) {
			return nil, ErrBadCredentials
		}
		return &routerConn{router: r}, nil
	})
}

// Dials returns the number of dial attempts.
func (r *Router) Dials() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dials
}

// Closed returns how many connections have been closed.
func (r *Router) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// ActiveIDs lists the ids of connected sessions in order.
func (r *Router) ActiveIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Active))
	for _, rec := range r.Active {
		out = append(out, fmt.Sprint(rec[".id"]))
	}
	return out
}

type dialFunc func(ctx context.Context, cfg routeros.Config) (routeros.Conn, error)

func (f dialFunc) Dial(ctx context.Context, cfg routeros.Config) (routeros.Conn, error) {
	return f(ctx, cfg)
}

type routerConn struct {
	router *Router
	closed bool
}

func (c *routerConn) Run(ctx context.Context, path string, params map[string]string) (*routeros.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := c.router
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.closed {
		return nil, routeros.ErrNotConnected
	}
	if err := r.failures[path]; err != nil {
		return nil, err
	}

	switch path {
	case "/system/resource/print":
		return sequence(r.Resource), nil
	case "/system/identity/print":
		return sequence(model.Record{"name": r.Identity}), nil
	case "/ip/hotspot/active/print":
		return sequence(filter(r.Active, params)...), nil
	case "/ip/hotspot/active/remove":
		var ok bool
		r.Active, ok = removeByID(r.Active, params[".id"])
		if !ok {
			return nil, errors.New("no such item")
		}
		return sequence(), nil
	case "/ip/hotspot/user/print":
		return sequence(filter(r.Users, params)...), nil
	case "/ip/hotspot/user/add":
		return r.addUser(params)
	case "/ip/hotspot/user/remove":
		var ok bool
		r.Users, ok = removeByID(r.Users, params[".id"])
		if !ok {
			return nil, errors.New("no such item")
		}
		return sequence(), nil
	case "/ip/hotspot/user/profile/print":
		rows := make([]model.Record, 0, len(r.Profiles))
		for _, name := range r.Profiles {
			rows = append(rows, model.Record{"name": name})
		}
		return sequence(rows...), nil
	default:
		return nil, fmt.Errorf("no such command prefix: %s", path)
	}
}

func (c *routerConn) Close(ctx context.Context) error {
	_ = ctx
	c.router.mu.Lock()
	defer c.router.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.router.closed++
	}
	return nil
}

func (r *Router) addUser(params map[string]string) (*routeros.Reply, error) {
	name := strings.TrimSpace(params["name"])
	if name == "" {
		return nil, errors.New("failure: name is required")
	}
	for _, rec := range r.Users {
		if rec["name"] == name {
			return nil, errors.New("failure: already have user with this name for this server")
		}
	}
	id := fmt.Sprintf("*%X", r.nextID)
	r.nextID++

	rec := model.Record{".id": id, "name": name, "disabled": "false"}
	for key, value := range params {
		if key == "name" || strings.HasPrefix(key, "?") || strings.HasPrefix(key, ".") {
			continue
		}
		rec[key] = value
	}
	if _, ok := rec["profile"]; !ok {
		rec["profile"] = "default"
	}
	r.Users = append(r.Users, rec)
	return &routeros.Reply{Records: []model.Record{}, Ret: id, Sequence: true}, nil
}

func sequence(rows ...model.Record) *routeros.Reply {
	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRecord(row))
	}
	return &routeros.Reply{Records: out, Sequence: true}
}

// filter applies "?key=value" params as equality matches.
func filter(rows []model.Record, params map[string]string) []model.Record {
	var keys []string
	for key := range params {
		if strings.HasPrefix(key, "?") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		match := true
		for _, key := range keys {
			if fmt.Sprint(row[strings.TrimPrefix(key, "?")]) != params[key] {
				match = false
				break
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out
}

// removeByID accepts either the .id or the name, like the router's find.
func removeByID(rows []model.Record, id string) ([]model.Record, bool) {
	for i, row := range rows {
		if fmt.Sprint(row[".id"]) == id || fmt.Sprint(row["name"]) == id {
			return append(rows[:i:i], rows[i+1:]...), true
		}
	}
	return rows, false
}

func cloneRecord(rec model.Record) model.Record {
	out := make(model.Record, len(rec))
	for key, value := range rec {
		out[key] = value
	}
	return out
}
