// Package dispatch executes named playback actions against the remote player.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/spotify"
)

// Action is a named playback operation.
type Action string

const (
	Pause    Action = "pause"
	Resume   Action = "resume"
	Devices  Action = "devices"
	Next     Action = "next"
	Previous Action = "previous"
)

// ErrUnknownAction is returned by Parse for names it does not know.
var ErrUnknownAction = errors.New("unknown action")

// Actions lists every action in display order.
var Actions = []Action{Pause, Resume, Devices, Next, Previous}

var aliases = map[Action][]string{
	Pause:    {"p"},
	Resume:   {"r"},
	Devices:  {"d"},
	Next:     {"n"},
	Previous: {"prev"},
}

// Aliases returns the short names of a.
func (a Action) Aliases() []string {
	return aliases[a]
}

// Parse resolves an action by name or alias, case-insensitively.
func Parse(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range Actions {
		if string(a) == name || lo.Contains(a.Aliases(), name) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Controller is the remote player. *spotify.Client implements it.
type Controller interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Devices(ctx context.Context) ([]spotify.Device, error)
}

// Result is what a successful action produced.
type Result struct {
	Action Action
	// Devices is set for the devices action, in the order the player listed them.
	Devices []spotify.Device
}

// Dispatcher runs actions synchronously.
type Dispatcher struct {
	controller Controller
}

// New returns a dispatcher over controller.
func New(controller Controller) *Dispatcher {
	return &Dispatcher{controller: controller}
}

// Run executes a and reports the classified failure, if any.
func (d *Dispatcher) Run(ctx context.Context, a Action) (Result, error) {
	logger := log.Component("dispatch").WithField("action", string(a))
	result := Result{Action: a}

	var err error
	switch a {
	case Pause:
		err = d.controller.Pause(ctx)
	case Resume:
		err = d.controller.Resume(ctx)
	case Next:
		err = d.controller.Next(ctx)
	case Previous:
		err = d.controller.Previous(ctx)
	case Devices:
		result.Devices, err = d.controller.Devices(ctx)
	default:
		return result, fmt.Errorf("%w: %q", ErrUnknownAction, string(a))
	}

	switch {
	case err == nil:
		logger.Info("done")
		return result, nil
	case errors.Is(err, spotify.ErrNoActiveDevice):
		logger.Warn("no active device")
	default:
		logger.WithError(err).Error("failed")
	}
	return result, fmt.Errorf("%s: %w", a, err)
}
