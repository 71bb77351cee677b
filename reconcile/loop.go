package reconcile

import (
	"context"
	"errors"
)

// ErrStopped is returned by Loop methods once Run has returned.
var ErrStopped = errors.New("reconciliation loop stopped")

type request struct {
	signal Signal
	query  bool
	reply  chan Outcome
}

// Loop owns a Core and feeds it from a single inbox, so signals from every
// source, timer firings and queries are handled one at a time in arrival order.
type Loop struct {
	core  *Core
	inbox chan request
	done  chan struct{}
}

// NewLoop wraps core. Timer signals of core are routed through the inbox.
func NewLoop(core *Core) *Loop {
	l := &Loop{
		core:  core,
		inbox: make(chan request, 64),
		done:  make(chan struct{}),
	}
	core.sink = l.Send
	return l
}

// Run handles requests until ctx is cancelled, then shuts the core down.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.core.Shutdown()
			return ctx.Err()
		case req := <-l.inbox:
			var out Outcome
			if req.query {
				snap := l.core.Snapshot()
				out = Outcome{Before: snap, After: snap}
			} else {
				out = l.core.Handle(req.signal)
			}
			if req.reply != nil {
				req.reply <- out
			}
		}
	}
}

// Send enqueues a signal without waiting for it to be handled.
// Signals sent after Run has returned are dropped.
func (l *Loop) Send(sig Signal) {
	select {
	case l.inbox <- request{signal: sig}:
	case <-l.done:
	}
}

// Submit enqueues a signal and waits for its outcome.
func (l *Loop) Submit(ctx context.Context, sig Signal) (Outcome, error) {
	return l.roundTrip(ctx, request{signal: sig, reply: make(chan Outcome, 1)})
}

// Snapshot returns the core's state as of now.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	out, err := l.roundTrip(ctx, request{query: true, reply: make(chan Outcome, 1)})
	return out.After, err
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) roundTrip(ctx context.Context, req request) (Outcome, error) {
	select {
	case l.inbox <- req:
	case <-l.done:
		return Outcome{}, ErrStopped
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	select {
	case out := <-req.reply:
		return out, nil
	case <-l.done:
		// Run may have answered just before stopping.
		select {
		case out := <-req.reply:
			return out, nil
		default:
			return Outcome{}, ErrStopped
		}
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
