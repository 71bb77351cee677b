// Package bridge carries browser playback notifications to a reconciliation
// core over a local HTTP endpoint.
package bridge

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/tacet-cli/tacet/reconcile"
)

// ErrInvalidAction is returned for notifications with an unknown action.
var ErrInvalidAction = errors.New("invalid action")

// Action is the notification verb.
type Action string

const (
	// ActionPlay means video became active.
	ActionPlay Action = "play"
	// ActionPause means video is no longer active.
	ActionPause Action = "pause"
)

// Kind maps the action onto a signal kind.
func (a Action) Kind() (reconcile.Kind, error) {
	switch a {
	case ActionPlay:
		return reconcile.VideoStarted, nil
	case ActionPause:
		return reconcile.VideoStopped, nil
	default:
		return 0, fmt.Errorf("%w: %q, use %q or %q", ErrInvalidAction, string(a), ActionPlay, ActionPause)
	}
}

// ActionFor maps a command of a page core onto the action announcing it.
func ActionFor(cmd reconcile.Command) Action {
	if cmd == reconcile.Suppress {
		return ActionPlay
	}
	return ActionPause
}

// Notification is the body of POST /video.
type Notification struct {
	Action Action `json:"action" jsonschema:"enum=play,enum=pause,description=play when video starts and pause when it stops"`
}

// Response is the body answering a notification.
type Response struct {
	Message string             `json:"message"`
	State   reconcile.Snapshot `json:"state"`
	Changed bool               `json:"changed"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Schema describes the notification body, or the response body when response is set.
func Schema(response bool) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true

	if response {
		return reflector.Reflect(&Response{})
	}
	return reflector.Reflect(&Notification{})
}
