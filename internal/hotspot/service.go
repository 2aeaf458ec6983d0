// Package hotspot translates hotspot administration actions into router
// commands and normalizes the answers.
package hotspot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/micro-ha/hotspot-monitor/internal/model"
	"github.com/micro-ha/hotspot-monitor/internal/normalize"
	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

const (
	pathActivePrint   = "/ip/hotspot/active/print"
	pathActiveRemove  = "/ip/hotspot/active/remove"
	pathUserAdd       = "/ip/hotspot/user/add"
	pathUserRemove    = "/ip/hotspot/user/remove"
	pathUserPrint     = "/ip/hotspot/user/print"
	pathProfilePrint  = "/ip/hotspot/user/profile/print"
	pathResourcePrint = "/system/resource/print"
	pathIdentityPrint = "/system/identity/print"

	activeProplist = ".id,user,profile,uptime,bytes-in,bytes-out,packets-in,packets-out,mac-address,address,login-by"

	minUsernameLength = 3
	minPasswordLength = 4
)

// Executor runs one command on the active router session.
type Executor interface {
	Execute(ctx context.Context, path string, params map[string]string) (*routeros.Reply, error)
}

// Service is the hotspot command facade.
type Service struct {
	exec   Executor
	logger *slog.Logger
	now    func() time.Time

	// ProfileFallback makes ListProfiles answer ["default"] instead of
	// failing. Enabled by New.
	ProfileFallback bool
}

// New creates a facade over exec.
func New(exec Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		exec:            exec,
		logger:          logger.With("component", "hotspot"),
		now:             time.Now,
		ProfileFallback: true,
	}
}

func (s *Service) ListActiveUsers(ctx context.Context) ([]model.HotspotUser, error) {
	reply, err := s.exec.Execute(ctx, pathActivePrint, nil)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return toHotspotUsers(reply), nil
}

// GetUserBySessionID returns the active session with the given id.
func (s *Service) GetUserBySessionID(ctx context.Context, sessionID string) (model.HotspotUser, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.HotspotUser{}, false, &routeros.ValidationError{Field: "session_id", Reason: "is required"}
	}
	reply, err := s.exec.Execute(ctx, pathActivePrint, map[string]string{
		".proplist": activeProplist,
		"?.id":      sessionID,
	})
	if err != nil {
		return model.HotspotUser{}, false, fmt.Errorf("get active user %s: %w", sessionID, err)
	}
	for _, user := range toHotspotUsers(reply) {
		if user.SessionID == sessionID {
			return user, true, nil
		}
	}
	return model.HotspotUser{}, false, nil
}

// LogoutUser forcibly disconnects an active session.
func (s *Service) LogoutUser(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return &routeros.ValidationError{Field: "session_id", Reason: "is required"}
	}
	if _, err := s.exec.Execute(ctx, pathActiveRemove, map[string]string{".id": sessionID}); err != nil {
		return fmt.Errorf("logout user %s: %w", sessionID, err)
	}
	s.logger.Info("hotspot session removed", "session_id", sessionID)
	return nil
}

// CreateUser adds a hotspot account and returns the id the router assigned,
// which is empty when the transport does not report one.
func (s *Service) CreateUser(ctx context.Context, in model.CreateUserInput) (string, error) {
	params, err := createUserParams(in)
	if err != nil {
		return "", err
	}
	reply, err := s.exec.Execute(ctx, pathUserAdd, params)
	if err != nil {
		return "", fmt.Errorf("create user %s: %w", params["name"], err)
	}
	id := ""
	if reply != nil {
		id = reply.Ret
	}
	s.logger.Info("hotspot user created", "name", params["name"], "profile", params["profile"], "id", id)
	return id, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return &routeros.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if _, err := s.exec.Execute(ctx, pathUserRemove, map[string]string{".id": userID}); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	s.logger.Info("hotspot user deleted", "id", userID)
	return nil
}

// ListAllUsers returns every registered account, connected or not.
func (s *Service) ListAllUsers(ctx context.Context) ([]model.UserProfile, error) {
	reply, err := s.exec.Execute(ctx, pathUserPrint, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := []model.UserProfile{}
	if reply == nil || !reply.Sequence {
		return out, nil
	}
	for _, rec := range reply.Records {
		out = append(out, normalize.ToUserProfile(rec))
	}
	return out, nil
}

// ListProfiles returns the profile names available for new accounts.
func (s *Service) ListProfiles(ctx context.Context) ([]string, error) {
	reply, err := s.exec.Execute(ctx, pathProfilePrint, map[string]string{".proplist": "name"})
	if err != nil {
		if !s.ProfileFallback {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		s.logger.Warn("profile list failed, using default", "err", err)
		return defaultProfiles(), nil
	}
	if reply == nil || !reply.Sequence {
		return defaultProfiles(), nil
	}

	seen := make(map[string]struct{}, len(reply.Records))
	out := make([]string, 0, len(reply.Records))
	for _, rec := range reply.Records {
		name := normalize.ProfileName(rec)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return defaultProfiles(), nil
	}
	return out, nil
}

// GetSystemInfo reads resource and identity concurrently and merges them.
func (s *Service) GetSystemInfo(ctx context.Context) (model.RouterSystemInfo, error) {
	var resource, identity model.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reply, err := s.exec.Execute(gctx, pathResourcePrint, nil)
		if err != nil {
			return fmt.Errorf("read system resource: %w", err)
		}
		resource = reply.First()
		return nil
	})
	g.Go(func() error {
		reply, err := s.exec.Execute(gctx, pathIdentityPrint, nil)
		if err != nil {
			return fmt.Errorf("read system identity: %w", err)
		}
		identity = reply.First()
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.RouterSystemInfo{}, err
	}
	return normalize.ToSystemInfo(resource, identity, s.now().UTC()), nil
}

func toHotspotUsers(reply *routeros.Reply) []model.HotspotUser {
	out := []model.HotspotUser{}
	if reply == nil || !reply.Sequence {
		return out
	}
	for _, rec := range reply.Records {
		if rec == nil {
			continue
		}
		out = append(out, normalize.ToHotspotUser(rec))
	}
	return out
}

func createUserParams(in model.CreateUserInput) (map[string]string, error) {
	name := strings.TrimSpace(in.Username)
	if len([]rune(name)) < minUsernameLength {
		return nil, &routeros.ValidationError{Field: "username", Reason: fmt.Sprintf("must be at least %d characters", minUsernameLength)}
	}
	if len([]rune(in.Password)) < minPasswordLength {
		return nil, &routeros.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if in.LimitBytesIn < 0 {
		return nil, &routeros.ValidationError{Field: "limit_bytes_in", Reason: "must not be negative"}
	}
	if in.LimitBytesOut < 0 {
		return nil, &routeros.ValidationError{Field: "limit_bytes_out", Reason: "must not be negative"}
	}

	profile := strings.TrimSpace(in.Profile)
	if profile == "" {
		profile = normalize.DefaultProfile
	}
	params := map[string]string{
		"name":     name,
		"password": in.Password,
		"profile":  profile,
	}
	if uptime := strings.TrimSpace(in.LimitUptime); uptime != "" {
		if _, err := normalize.ParseDuration(uptime); err != nil {
			return nil, &routeros.ValidationError{Field: "limit_uptime", Reason: err.Error()}
		}
		params["limit-uptime"] = uptime
	}
	if in.LimitBytesIn > 0 {
		params["limit-bytes-in"] = strconv.FormatInt(in.LimitBytesIn, 10)
	}
	if in.LimitBytesOut > 0 {
		params["limit-bytes-out"] = strconv.FormatInt(in.LimitBytesOut, 10)
	}
	return params, nil
}

func defaultProfiles() []string {
	return []string{normalize.DefaultProfile}
}
