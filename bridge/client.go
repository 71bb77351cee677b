package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/network"
	"github.com/tacet-cli/tacet/reconcile"
	"github.com/tacet-cli/tacet/util"
)

// Notifier posts notifications to a bridge server. Notifications are sent
// one at a time in the order they were emitted. Delivery is fire-and-forget:
// failures are logged, never retried.
type Notifier struct {
	endpoint string
	http     *http.Client

	queue chan notification
	done  chan struct{}

	// mu guards sends on queue against Close.
	mu     sync.RWMutex
	closed bool
}

// notification is a queued action, or a flush marker when flushed is set.
type notification struct {
	action  Action
	flushed chan struct{}
}

// NewNotifier returns a notifier for the server at baseURL and starts its
// worker. Close stops it.
func NewNotifier(baseURL string, client *http.Client) *Notifier {
	if client == nil {
		client = network.Local
	}
	n := &Notifier{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/video",
		http:     client,
		queue:    make(chan notification, 16),
		done:     make(chan struct{}),
	}
	go n.work()
	return n
}

// Emit announces a page core's command.
func (n *Notifier) Emit(cmd reconcile.Command) {
	n.Notify(ActionFor(cmd))
}

// Notify queues action without blocking. When the queue is full or the
// notifier is closed the action is dropped with a warning.
func (n *Notifier) Notify(action Action) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	logger := log.Component("bridge").WithField("action", string(action))
	if n.closed {
		logger.Warn("notifier closed, notification dropped")
		return
	}

	select {
	case n.queue <- notification{action: action}:
	default:
		logger.Warn("queue full, notification dropped")
	}
}

// Flush waits up to timeout for everything queued so far to be sent.
func (n *Notifier) Flush(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	flushed := make(chan struct{})

	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		select {
		case <-n.done:
			return true
		case <-timer.C:
			return false
		}
	}
	select {
	case n.queue <- notification{flushed: flushed}:
		n.mu.RUnlock()
	case <-timer.C:
		n.mu.RUnlock()
		return false
	}

	select {
	case <-flushed:
		return true
	case <-timer.C:
		return false
	}
}

// Close stops accepting notifications and waits up to grace for queued ones.
// It reports whether the queue drained in time.
func (n *Notifier) Close(grace time.Duration) bool {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return true
	case <-time.After(grace):
		log.Component("bridge").Warn("pending notifications abandoned")
		return false
	}
}

func (n *Notifier) work() {
	defer close(n.done)

	for item := range n.queue {
		if item.flushed != nil {
			close(item.flushed)
			continue
		}

		logger := log.Component("bridge").WithField("action", string(item.action))
		if err := n.send(item.action); err != nil {
			logger.WithError(err).Warn("notification not delivered")
			continue
		}
		logger.Debug("notification delivered")
	}
}

func (n *Notifier) send(action Action) error {
	body, err := json.Marshal(Notification{Action: action})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	return nil
}
