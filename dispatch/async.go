package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/reconcile"
)

// DefaultCommandTimeout bounds one asynchronous command, refresh included.
const DefaultCommandTimeout = 20 * time.Second

// Async turns reconciliation commands into actions without blocking the
// caller. Commands run one after another in emission order on a single
// worker; failures are logged and dropped.
type Async struct {
	dispatcher *Dispatcher
	timeout    time.Duration

	queue chan reconcile.Command
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsync starts the worker. Close stops it.
func NewAsync(d *Dispatcher, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	a := &Async{
		dispatcher: d,
		timeout:    timeout,
		queue:      make(chan reconcile.Command, 16),
		done:       make(chan struct{}),
	}
	go a.work()
	return a
}

// Emit queues the action for cmd. It never blocks; when the queue is full
// or the worker is closed the command is dropped with a warning.
func (a *Async) Emit(cmd reconcile.Command) {
	a.mu.Lock()
	defer a.mu.Unlock()

	logger := log.Component("dispatch").WithField("command", cmd.String())
	if a.closed {
		logger.Warn("dispatcher closed, command dropped")
		return
	}

	select {
	case a.queue <- cmd:
	default:
		logger.Warn("queue full, command dropped")
	}
}

// Close stops accepting commands and waits up to grace for queued ones to finish.
// It reports whether the queue drained in time.
func (a *Async) Close(grace time.Duration) bool {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return true
	case <-time.After(grace):
		log.Component("dispatch").Warn("pending commands abandoned")
		return false
	}
}

func (a *Async) work() {
	defer close(a.done)

	for cmd := range a.queue {
		action := Resume
		if cmd == reconcile.Suppress {
			action = Pause
		}

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		// Run logs the failure; continuous modes carry on regardless.
		_, _ = a.dispatcher.Run(ctx, action)
		cancel()
	}
}
