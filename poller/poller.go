// Package poller samples the focused window on an interval and reports when
// it starts or stops looking like video.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/reconcile"
)

// DefaultInterval is the sampling period.
const DefaultInterval = 5 * time.Second

// Poller turns focus samples into edge-triggered playback signals.
type Poller struct {
	sampler Sampler
	emit    func(reconcile.Signal)

	mu         sync.Mutex
	interval   time.Duration
	classifier Classifier
	reset      chan struct{}

	// video is the last classification; it starts false.
	video bool

	logger *logrus.Entry
}

// Option customizes a Poller.
type Option func(*Poller)

// WithInterval sets the sampling period.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithKeywords replaces the default keywords.
func WithKeywords(keywords []string) Option {
	return func(p *Poller) { p.classifier = NewClassifier(keywords) }
}

// New returns a poller reading from sampler and passing signals to emit.
func New(sampler Sampler, emit func(reconcile.Signal), opts ...Option) *Poller {
	p := &Poller{
		sampler:    sampler,
		emit:       emit,
		interval:   DefaultInterval,
		classifier: NewClassifier(DefaultKeywords),
		reset:      make(chan struct{}, 1),
		logger:     log.Component("poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reload swaps interval and keywords while running. The new interval takes
// effect from the next tick.
func (p *Poller) Reload(interval time.Duration, keywords []string) {
	p.mu.Lock()
	changed := interval > 0 && interval != p.interval
	if interval > 0 {
		p.interval = interval
	}
	p.classifier = NewClassifier(keywords)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"interval": interval.String(),
		"keywords": keywords,
	}).Info("configuration reloaded")

	if changed {
		select {
		case p.reset <- struct{}{}:
		default:
		}
	}
}

// Run samples immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.currentInterval())
	defer ticker.Stop()

	p.logger.WithField("interval", p.currentInterval().String()).Info("focus detection started")

	for {
		p.Tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.reset:
			ticker.Reset(p.currentInterval())
		case <-ticker.C:
		}
	}
}

// Tick takes one sample and emits a signal when the classification changed.
// Missing window data leaves the state untouched.
func (p *Poller) Tick(ctx context.Context) mo.Option[reconcile.Kind] {
	w, err := p.sampler.Sample(ctx)
	if err != nil {
		p.logger.WithError(err).Debug("sample skipped")
		return mo.None[reconcile.Kind]()
	}
	if w.Empty() {
		p.logger.Debug("no focused window, sample skipped")
		return mo.None[reconcile.Kind]()
	}

	p.mu.Lock()
	video := p.classifier.IsVideo(w)
	p.mu.Unlock()

	if video == p.video {
		return mo.None[reconcile.Kind]()
	}
	p.video = video

	kind := reconcile.VideoStopped
	if video {
		kind = reconcile.VideoStarted
	}

	p.logger.WithFields(logrus.Fields{
		"title": w.Title,
		"app":   w.App,
		"video": video,
	}).Info("focus classification changed")

	p.emit(reconcile.NewSignal(reconcile.SourcePoller, kind))
	return mo.Some(kind)
}

func (p *Poller) currentInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
