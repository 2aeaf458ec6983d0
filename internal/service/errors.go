package service

import (
	"errors"

	"github.com/micro-ha/hotspot-monitor/internal/routeros"
)

const (
	msgRefused = "Connection refused. Check IP and port."
	msgTimeout = "Connection timeout. Router may be unreachable."
	msgAuth    = "Authentication failed. Check username and password."
	msgFailed  = "Failed to connect to router"
)

// ErrorMessage turns a login error into text for the UI.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *routeros.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	switch {
	case routeros.IsConnectionRefused(err):
		return msgRefused
	case routeros.IsTimeout(err):
		return msgTimeout
	}
	var authErr *routeros.AuthenticationError
	if errors.As(err, &authErr) {
		if authErr.Rejected() {
			return msgAuth
		}
		if authErr.Err != nil && authErr.Err.Error() != "" {
			return authErr.Err.Error()
		}
		return msgFailed
	}
	if message := err.Error(); message != "" {
		return message
	}
	return msgFailed
}
