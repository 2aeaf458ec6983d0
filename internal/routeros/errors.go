package routeros

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	goros "github.com/go-routeros/routeros/v3"
)

// ErrNotConnected is returned when a command is issued without an active session.
var ErrNotConnected = errors.New("not connected to router")

// ValidationError describes a user-supplied invalid value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthenticationError means a connect attempt did not produce a session.
type AuthenticationError struct {
	Address  string
	Username string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e == nil {
		return "routeros login failed"
	}
	return fmt.Sprintf("routeros login to %s as %q failed: %v", e.Address, e.Username, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Rejected reports whether the router itself refused the credentials, as
// opposed to being unreachable.
func (e *AuthenticationError) Rejected() bool {
	if e == nil {
		return false
	}
	return isCredentialRejection(e.Err)
}

// CommandError means one remote command failed on an active session.
type CommandError struct {
	Path string
	Err  error
}

func (e *CommandError) Error() string {
	if e == nil {
		return "routeros command failed"
	}
	return fmt.Sprintf("routeros command %s failed: %v", e.Path, e.Err)
}

func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError is a non-2xx answer from the REST service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "http status error"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, body)
}

// IsTimeout reports whether err comes from a deadline or i/o timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "i/o timeout") ||
		strings.Contains(message, "deadline exceeded") ||
		strings.Contains(message, "timeout")
}

// IsConnectionRefused reports whether the router actively refused the TCP connection.
func IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isCredentialRejection(err error) bool {
	if err == nil {
		return false
	}
	var deviceErr *goros.DeviceError
	if errors.As(err, &deviceErr) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "invalid user name or password") ||
		strings.Contains(text, "cannot log in")
}

// IsNotFound reports whether the router rejected a command for a missing item.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return true
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "no such item") ||
		strings.Contains(text, "not found") ||
		strings.Contains(text, "invalid internal item")
}

// IsAlreadyExists reports whether the router rejected an add as a duplicate.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "already have") || strings.Contains(text, "already exists")
}
