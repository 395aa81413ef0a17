package h5grove

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/resilience"
)

// Sentinel errors for h5grove responses.
var (
	// ErrPermission indicates the server cannot read the file.
	ErrPermission = errors.New("h5grove: permission denied")

	// ErrUnresolvable indicates a soft link whose target does not exist.
	ErrUnresolvable = errors.New("h5grove: cannot resolve link")

	// ErrBadResponse indicates a payload the client cannot decode.
	ErrBadResponse = errors.New("h5grove: unexpected response")

	// ErrInvalidURL indicates an unusable server URL.
	ErrInvalidURL = errors.New("h5grove: invalid server URL")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("h5grove: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("h5grove: %d %s", e.Code, e.Message)
}

// responseError maps a failed response to an error. Server errors are
// transient; everything else is marked permanent.
func (s *Source) responseError(code int, body []byte, path string) error {
	var payload struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}

	switch {
	case strings.Contains(msg, "File not found"):
		return resilience.Permanent(fmt.Errorf("%w: file %q", provider.ErrNotFound, s.file))
	case strings.Contains(msg, "Permission denied"):
		return resilience.Permanent(fmt.Errorf("%w: %q", ErrPermission, s.file))
	case strings.Contains(msg, "not a valid path"), code == http.StatusNotFound:
		return resilience.Permanent(fmt.Errorf("%w: %s", provider.ErrNotFound, path))
	case strings.Contains(msg, "Cannot resolve"):
		return resilience.Permanent(fmt.Errorf("%w at %s", ErrUnresolvable, path))
	}

	err := &StatusError{Code: code, Message: msg}
	if code >= 500 || code == http.StatusTooManyRequests {
		return err
	}
	return resilience.Permanent(err)
}
