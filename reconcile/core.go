// Package reconcile decides, from a stream of playback signals, when remote
// playback should be suppressed and when it should be restored.
//
// A Core holds the state of one monitored context. It is not safe for
// concurrent use; Loop serializes access to it.
package reconcile

import (
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/tacet-cli/tacet/log"
)

// DefaultConfirmDelay is how long a pause must stand before it counts.
const DefaultConfirmDelay = 500 * time.Millisecond

// Core is the reconciliation state machine.
type Core struct {
	state   State
	emitter Emitter

	scheduler    Scheduler
	confirmDelay time.Duration
	generation   uint64

	// sink receives timer signals from the scheduler's goroutine. Loop points
	// it at its inbox; without a Loop they are dropped.
	sink func(Signal)

	logger *logrus.Entry
}

// Option customizes a Core.
type Option func(*Core)

// WithScheduler replaces the wall clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Core) { c.scheduler = s }
}

// WithConfirmDelay sets the pause confirmation window.
func WithConfirmDelay(d time.Duration) Option {
	return func(c *Core) {
		if d > 0 {
			c.confirmDelay = d
		}
	}
}

// WithName labels the core's log lines with the monitored context.
func WithName(name string) Option {
	return func(c *Core) { c.logger = c.logger.WithField("context", name) }
}

// New returns a core in the fresh state that sends commands to emitter.
func New(emitter Emitter, opts ...Option) *Core {
	c := &Core{
		emitter:      emitter,
		scheduler:    clock{},
		confirmDelay: DefaultConfirmDelay,
		logger:       log.Component("reconcile"),
	}
	c.sink = func(s Signal) {
		c.logger.WithField("signal", s.Kind.String()).Warn("core not driven by a loop, timer signal dropped")
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Core) Snapshot() Snapshot {
	return c.state.snapshot()
}

// Handle applies one signal. State is updated before any command is emitted,
// and a command failure never rolls it back.
func (c *Core) Handle(sig Signal) Outcome {
	out := Outcome{Before: c.state.snapshot()}

	s := &c.state
	logger := c.logger.WithFields(logrus.Fields{
		"source": sig.Source.String(),
		"signal": sig.Kind.String(),
	})

	switch sig.Kind {
	case VideoStarted:
		s.paused = false
		switch s.Phase() {
		case Seeking:
			// the seek end decides
		case PendingPauseConfirm:
			c.cancelPending()
		case Idle:
			s.VideoActive = true
			out.Emitted = c.report(true)
		}

	case PauseDetected:
		s.paused = true
		if s.Phase() == Active {
			c.schedulePending()
		}

	case pauseConfirmed:
		p, ok := s.PendingPauseConfirmation.Get()
		if !ok || p.generation != sig.generation {
			logger.Debug("stale confirmation ignored")
			return c.finish(out)
		}
		s.PendingPauseConfirmation = mo.None[pending]()
		if !s.Seeking && s.paused {
			s.VideoActive = false
			out.Emitted = c.report(false)
		}

	case SeekStarted:
		c.cancelPending()
		s.Seeking = true

	case SeekEnded:
		c.cancelPending()
		s.Seeking = false
		s.paused = sig.Paused
		s.VideoActive = !sig.Paused
		out.Emitted = c.report(s.VideoActive)

	case VideoStopped:
		c.cancelPending()
		s.Seeking = false
		s.paused = true
		s.VideoActive = false
		out.Emitted = c.report(false)

	case Unload:
		c.cancelPending()
		out.Emitted = c.report(false)
		c.state = State{}

	default:
		logger.Warn("unknown signal ignored")
		return c.finish(out)
	}

	out = c.finish(out)
	if !out.Changed() && out.Emitted.IsAbsent() {
		logger.Debug("redundant signal")
	} else {
		logger.WithFields(logrus.Fields{
			"from": out.Before.Phase.String(),
			"to":   out.After.Phase.String(),
		}).Info("transition")
	}
	return out
}

// Shutdown restores remote playback if it is currently suppressed and
// returns the core to the fresh state. The emitter is fire-and-forget, so
// this never waits for the command.
func (c *Core) Shutdown() mo.Option[Command] {
	c.cancelPending()
	emitted := c.report(false)
	if emitted.IsPresent() {
		c.logger.Info("restoring playback before exit")
	}
	c.state = State{}
	return emitted
}

func (c *Core) finish(out Outcome) Outcome {
	out.After = c.state.snapshot()
	return out
}

// report emits the command standing for active unless the last emitted
// command already stands for it.
func (c *Core) report(active bool) mo.Option[Command] {
	if c.state.reported == active {
		return mo.None[Command]()
	}
	c.state.reported = active

	cmd := Restore
	if active {
		cmd = Suppress
	}
	c.logger.WithField("command", cmd.String()).Debug("emit")
	c.emitter.Emit(cmd)
	return mo.Some(cmd)
}

func (c *Core) schedulePending() {
	c.generation++
	generation := c.generation
	sink := c.sink

	timer := c.scheduler.AfterFunc(c.confirmDelay, func() {
		sig := NewSignal(SourceSystem, pauseConfirmed)
		sig.generation = generation
		sink(sig)
	})
	c.state.PendingPauseConfirmation = mo.Some(pending{timer: timer, generation: generation})
}

func (c *Core) cancelPending() {
	if p, ok := c.state.PendingPauseConfirmation.Get(); ok {
		p.timer.Stop()
		c.state.PendingPauseConfirmation = mo.None[pending]()
	}
}
