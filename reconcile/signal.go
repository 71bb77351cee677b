package reconcile

import (
	"fmt"
	"time"
)

// Source identifies where a signal came from.
type Source int

const (
	SourcePoller Source = iota + 1
	SourceWatcher
	SourceBridge
	SourceSystem
)

func (s Source) String() string {
	switch s {
	case SourcePoller:
		return "poller"
	case SourceWatcher:
		return "watcher"
	case SourceBridge:
		return "bridge"
	case SourceSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Kind is what a signal reports.
type Kind int

const (
	// VideoStarted reports that video playback began or resumed.
	VideoStarted Kind = iota + 1
	// VideoStopped reports that video is definitely no longer playing,
	// such as focus moving away from a video window.
	VideoStopped
	// PauseDetected reports a pause that may still turn out to be part of a seek.
	PauseDetected
	// SeekStarted reports that a seek began.
	SeekStarted
	// SeekEnded reports that a seek completed. Signal.Paused carries the
	// element's paused flag at that moment.
	SeekEnded
	// Unload reports that the monitored page is going away.
	Unload

	// pauseConfirmed is posted by the confirmation timer.
	pauseConfirmed
)

func (k Kind) String() string {
	switch k {
	case VideoStarted:
		return "video-started"
	case VideoStopped:
		return "video-stopped"
	case PauseDetected:
		return "pause-detected"
	case SeekStarted:
		return "seek-started"
	case SeekEnded:
		return "seek-ended"
	case Unload:
		return "unload"
	case pauseConfirmed:
		return "pause-confirmed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Signal is a single notification that playback state may have changed.
type Signal struct {
	Source Source
	Kind   Kind
	// Paused is the media element's paused flag when the event fired.
	Paused bool
	Time   time.Time

	generation uint64
}

// NewSignal stamps a signal with the current time.
func NewSignal(source Source, kind Kind) Signal {
	return Signal{Source: source, Kind: kind, Time: time.Now()}
}

// WithPaused returns a copy carrying the element's paused flag.
func (s Signal) WithPaused(paused bool) Signal {
	s.Paused = paused
	return s
}

// Command is what the core asks the remote player to do.
type Command int

const (
	// Suppress pauses remote playback while video is active.
	Suppress Command = iota + 1
	// Restore resumes remote playback once video is no longer active.
	Restore
)

func (c Command) String() string {
	switch c {
	case Suppress:
		return "suppress"
	case Restore:
		return "restore"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Emitter carries commands out of the core. Emit must not block on the
// network; failures are the emitter's to log.
type Emitter interface {
	Emit(Command)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Command)

func (f EmitterFunc) Emit(c Command) { f(c) }
