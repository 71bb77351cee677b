package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Failure classes of the Web API. Every error returned by Client wraps exactly one of them.
var (
	// ErrNoActiveDevice means Spotify has no playback target. It is never retried.
	ErrNoActiveDevice = errors.New("no active device")

	// ErrTokenExpired means the bearer credential was rejected.
	ErrTokenExpired = errors.New("access token expired")

	// ErrTransientNetwork covers transport failures and overloaded upstreams.
	ErrTransientNetwork = errors.New("spotify unreachable")

	// ErrOther is any other rejected request.
	ErrOther = errors.New("spotify request failed")
)

const reasonNoActiveDevice = "NO_ACTIVE_DEVICE"

// APIError is a non-2xx answer from the Web API.
type APIError struct {
	Status  int
	Reason  string
	Message string

	class error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: status %d", e.class, e.Status)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.class
}

// errorBody is the regular error object the Web API returns.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// classify turns a non-2xx response into an *APIError.
func classify(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Error.Message
		apiErr.Reason = body.Error.Reason
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.class = ErrTokenExpired
	case resp.StatusCode == http.StatusNotFound && apiErr.Reason == reasonNoActiveDevice:
		apiErr.class = ErrNoActiveDevice
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		apiErr.class = ErrTransientNetwork
	default:
		apiErr.class = ErrOther
	}

	return apiErr
}
