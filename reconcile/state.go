package reconcile

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Phase is the state machine position derived from State.
type Phase int

const (
	Idle Phase = iota
	Active
	PendingPauseConfirm
	Seeking
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case PendingPauseConfirm:
		return "pending-pause-confirm"
	case Seeking:
		return "seeking"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler schedules callbacks. *time.Timer satisfies Timer.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type pending struct {
	timer      Timer
	generation uint64
}

// State is the reconciliation state of one monitored context.
// The zero value is the fresh state.
type State struct {
	// VideoActive is the logical view: external video is consuming attention.
	// It keeps its value while seeking.
	VideoActive bool
	Seeking     bool

	PendingPauseConfirmation mo.Option[pending]

	// paused is the element's last observed paused flag.
	paused bool
	// reported is the logical state the last emitted command stands for.
	reported bool
}

// Phase derives the state machine position.
func (s State) Phase() Phase {
	switch {
	case s.Seeking:
		return Seeking
	case s.PendingPauseConfirmation.IsPresent():
		return PendingPauseConfirm
	case s.VideoActive:
		return Active
	default:
		return Idle
	}
}

// Snapshot is a read-only view of State.
type Snapshot struct {
	Phase        Phase `json:"phase"`
	VideoActive  bool  `json:"video_active"`
	Seeking      bool  `json:"seeking"`
	PendingPause bool  `json:"pending_pause"`
	Suppressed   bool  `json:"suppressed"`
}

func (s State) snapshot() Snapshot {
	return Snapshot{
		Phase:        s.Phase(),
		VideoActive:  s.VideoActive,
		Seeking:      s.Seeking,
		PendingPause: s.PendingPauseConfirmation.IsPresent(),
		Suppressed:   s.reported,
	}
}

// Outcome describes what handling one signal did.
type Outcome struct {
	Before  Snapshot
	After   Snapshot
	Emitted mo.Option[Command]
}

// Changed reports whether the state machine moved.
func (o Outcome) Changed() bool {
	return o.Before.Phase != o.After.Phase
}
