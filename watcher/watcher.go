// Package watcher follows media elements in the tabs of a Chromium browser
// over the DevTools protocol and reconciles each tab's playback on its own.
package watcher

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/config"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/reconcile"
	"github.com/tacet-cli/tacet/where"
	"github.com/ysmood/gson"
)

//go:embed forwarder.js
var forwarderJS string

const bindingName = "__tacetSignal"

// ErrNoBrowser is returned when there is neither a debugger URL nor permission to launch.
var ErrNoBrowser = errors.New("no browser to watch: set watcher.debugger_url or enable watcher.launch")

// Config selects the browser and tunes the per-tab cores.
type Config struct {
	DebuggerURL  string
	Launch       bool
	Headless     bool
	ProfileDir   string
	PauseConfirm time.Duration
	// PollInterval is how often the tab list is refreshed.
	PollInterval time.Duration
}

// ConfigFromViper reads the watcher section of the global configuration.
func ConfigFromViper() Config {
	return Config{
		DebuggerURL:  viper.GetString(key.WatcherDebuggerURL),
		Launch:       viper.GetBool(key.WatcherLaunch),
		Headless:     viper.GetBool(key.WatcherHeadless),
		ProfileDir:   where.BrowserProfile(),
		PauseConfirm: config.Millis(key.WatcherPauseConfirmMs),
		PollInterval: time.Second,
	}
}

// tab is the part of a browser tab the watcher needs.
type tab interface {
	ID() string
	// Hook installs the forwarder and delivers its events to onEvent until stop is called.
	Hook(ctx context.Context, onEvent func(gson.JSON)) (stop func(), err error)
}

type tabLister interface {
	Tabs() ([]tab, error)
}

type session struct {
	loop   *reconcile.Loop
	stop   func()
	cancel context.CancelFunc
}

// Watcher attaches one reconciliation core to every open tab.
type Watcher struct {
	cfg      Config
	emitter  reconcile.Emitter
	sessions map[string]*session
	logger   *logrus.Entry
}

// New returns a watcher whose tab cores send their commands to emitter.
func New(cfg Config, emitter reconcile.Emitter) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Watcher{
		cfg:      cfg,
		emitter:  emitter,
		sessions: make(map[string]*session),
		logger:   log.Component("watcher"),
	}
}

// Run connects to the browser and watches its tabs until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	browser, launched, err := connect(ctx, w.cfg)
	if err != nil {
		return err
	}
	if launched {
		defer func() { _ = browser.Close() }()
	}

	return w.watch(ctx, rodBrowser{browser})
}

func (w *Watcher) watch(ctx context.Context, tabs tabLister) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	defer w.detachAll()

	for {
		w.sync(ctx, tabs)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// sync attaches to new tabs and detaches from closed ones.
func (w *Watcher) sync(ctx context.Context, tabs tabLister) {
	list, err := tabs.Tabs()
	if err != nil {
		w.logger.WithError(err).Warn("list tabs")
		return
	}

	open := make(map[string]bool, len(list))
	for _, t := range list {
		open[t.ID()] = true
		if _, ok := w.sessions[t.ID()]; !ok {
			w.sessions[t.ID()] = w.attach(ctx, t)
		}
	}

	for id, s := range w.sessions {
		if !open[id] {
			w.detach(id, s)
		}
	}
}

func (w *Watcher) attach(ctx context.Context, t tab) *session {
	logger := w.logger.WithField("tab", t.ID())

	core := reconcile.New(w.emitter,
		reconcile.WithConfirmDelay(w.cfg.PauseConfirm),
		reconcile.WithName(t.ID()),
	)
	loop := reconcile.NewLoop(core)

	tabCtx, cancel := context.WithCancel(ctx)
	go func() { _ = loop.Run(tabCtx) }()

	stop, err := t.Hook(tabCtx, func(payload gson.JSON) {
		sig, err := ParseEvent(payload)
		if err != nil {
			logger.WithError(err).Debug("event dropped")
			return
		}
		loop.Send(sig)
	})
	if err != nil {
		// Some targets refuse bindings. Remember them so they are not retried every tick.
		logger.WithError(err).Debug("tab not hooked")
		cancel()
		return &session{}
	}

	logger.Info("watching tab")
	return &session{loop: loop, stop: stop, cancel: cancel}
}

// detach treats a closed tab as unloaded.
func (w *Watcher) detach(id string, s *session) {
	delete(w.sessions, id)
	if s.loop == nil {
		return
	}

	s.stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.loop.Submit(ctx, reconcile.NewSignal(reconcile.SourceWatcher, reconcile.Unload)); err != nil {
		w.logger.WithError(err).WithField("tab", id).Debug("unload not delivered")
	}

	s.cancel()
	<-s.loop.Done()
	w.logger.WithField("tab", id).Info("tab closed")
}

func (w *Watcher) detachAll() {
	for id, s := range w.sessions {
		w.detach(id, s)
	}
}

func connect(ctx context.Context, cfg Config) (browser *rod.Browser, launched bool, err error) {
	controlURL := cfg.DebuggerURL

	switch {
	case controlURL != "":
		controlURL, err = launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, false, fmt.Errorf("resolve debugger url: %w", err)
		}
	case cfg.Launch:
		l := launcher.New().Context(ctx).Headless(cfg.Headless)
		if cfg.ProfileDir != "" {
			l = l.UserDataDir(cfg.ProfileDir)
		}
		controlURL, err = l.Launch()
		if err != nil {
			return nil, false, fmt.Errorf("launch browser: %w", err)
		}
		launched = true
	default:
		return nil, false, ErrNoBrowser
	}

	browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, false, fmt.Errorf("connect to browser: %w", err)
	}

	log.Component("watcher").WithFields(logrus.Fields{
		"url":      controlURL,
		"launched": launched,
	}).Info("connected to browser")
	return browser, launched, nil
}

type rodBrowser struct {
	browser *rod.Browser
}

func (b rodBrowser) Tabs() ([]tab, error) {
	pages, err := b.browser.Pages()
	if err != nil {
		return nil, err
	}

	tabs := make([]tab, 0, len(pages))
	for _, p := range pages {
		tabs = append(tabs, rodTab{p})
	}
	return tabs, nil
}

type rodTab struct {
	page *rod.Page
}

func (t rodTab) ID() string {
	return string(t.page.TargetID)
}

func (t rodTab) Hook(ctx context.Context, onEvent func(gson.JSON)) (func(), error) {
	page := t.page.Context(ctx)

	stopExpose, err := page.Expose(bindingName, func(payload gson.JSON) (interface{}, error) {
		onEvent(payload)
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expose binding: %w", err)
	}

	remove, err := page.EvalOnNewDocument(fmt.Sprintf("(%s)(%q)", forwarderJS, bindingName))
	if err != nil {
		_ = stopExpose()
		return nil, fmt.Errorf("install forwarder: %w", err)
	}

	// The current document predates the new-document hook.
	if _, err := page.Eval(forwarderJS, bindingName); err != nil {
		log.Component("watcher").WithError(err).WithField("tab", t.ID()).Debug("forwarder not run on current document")
	}

	return func() {
		_ = remove()
		_ = stopExpose()
	}, nil
}
