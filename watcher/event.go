package watcher

import (
	"errors"
	"fmt"

	"github.com/tacet-cli/tacet/reconcile"
	"github.com/ysmood/gson"
)

// ErrMalformedEvent is returned for payloads the forwarder script would never send.
var ErrMalformedEvent = errors.New("malformed media event")

var kinds = map[string]reconcile.Kind{
	"play":    reconcile.VideoStarted,
	"pause":   reconcile.PauseDetected,
	"seeking": reconcile.SeekStarted,
	"seeked":  reconcile.SeekEnded,
	"unload":  reconcile.Unload,
}

// ParseEvent turns a forwarded media event into a signal.
// The payload looks like {"kind":"seeked","paused":false}.
func ParseEvent(payload gson.JSON) (reconcile.Signal, error) {
	if !payload.Has("kind") {
		return reconcile.Signal{}, fmt.Errorf("%w: no kind", ErrMalformedEvent)
	}

	name := payload.Get("kind").Str()
	kind, ok := kinds[name]
	if !ok {
		return reconcile.Signal{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, name)
	}

	paused := payload.Has("paused") && payload.Get("paused").Bool()
	return reconcile.NewSignal(reconcile.SourceWatcher, kind).WithPaused(paused), nil
}
