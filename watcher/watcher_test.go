package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tacet-cli/tacet/reconcile"
	"github.com/ysmood/gson"
)

type fakeTab struct {
	id      string
	hookErr error

	mu      sync.Mutex
	onEvent func(gson.JSON)
	stopped bool
}

func (t *fakeTab) ID() string { return t.id }

func (t *fakeTab) Hook(_ context.Context, onEvent func(gson.JSON)) (func(), error) {
	if t.hookErr != nil {
		return nil, t.hookErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvent = onEvent
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.stopped = true
	}, nil
}

func (t *fakeTab) fire(kind string, paused bool) {
	t.mu.Lock()
	onEvent := t.onEvent
	t.mu.Unlock()
	onEvent(gson.New(map[string]interface{}{"kind": kind, "paused": paused}))
}

type fakeBrowser struct {
	tabs []tab
	err  error
}

func (b *fakeBrowser) Tabs() ([]tab, error) { return b.tabs, b.err }

func next(commands chan reconcile.Command) reconcile.Command {
	select {
	case c := <-commands:
		return c
	case <-time.After(time.Second):
		return 0
	}
}

func TestParseEvent(t *testing.T) {
	Convey("ParseEvent", t, func() {
		Convey("Maps media events onto signals", func() {
			for name, kind := range kinds {
				sig, err := ParseEvent(gson.New(map[string]interface{}{"kind": name, "paused": true}))
				So(err, ShouldBeNil)
				So(sig.Kind, ShouldEqual, kind)
				So(sig.Source, ShouldEqual, reconcile.SourceWatcher)
				So(sig.Paused, ShouldBeTrue)
			}
		})

		Convey("Carries the element's paused flag", func() {
			sig, err := ParseEvent(gson.New(map[string]interface{}{"kind": "seeked", "paused": false}))
			So(err, ShouldBeNil)
			So(sig.Kind, ShouldEqual, reconcile.SeekEnded)
			So(sig.Paused, ShouldBeFalse)
		})

		Convey("Rejects unknown or missing kinds", func() {
			_, err := ParseEvent(gson.New(map[string]interface{}{"kind": "volumechange"}))
			So(errors.Is(err, ErrMalformedEvent), ShouldBeTrue)

			_, err = ParseEvent(gson.New(map[string]interface{}{"paused": true}))
			So(errors.Is(err, ErrMalformedEvent), ShouldBeTrue)
		})
	})
}

func TestForwarder(t *testing.T) {
	Convey("The forwarder script is a function of the binding name", t, func() {
		So(strings.HasPrefix(strings.TrimSpace(forwarderJS), "(binding) =>"), ShouldBeTrue)
		for _, event := range []string{"'play'", "'pause'", "'seeking'", "'seeked'", "'beforeunload'", "MutationObserver"} {
			So(forwarderJS, ShouldContainSubstring, event)
		}
	})
}

func TestSessions(t *testing.T) {
	Convey("Given a watcher over a fake browser", t, func() {
		commands := make(chan reconcile.Command, 16)
		w := New(Config{PauseConfirm: 10 * time.Millisecond}, reconcile.EmitterFunc(func(c reconcile.Command) {
			commands <- c
		}))

		ctx, cancel := context.WithCancel(context.Background())
		Reset(func() {
			cancel()
			w.detachAll()
		})

		first := &fakeTab{id: "A"}
		second := &fakeTab{id: "B"}
		browser := &fakeBrowser{tabs: []tab{first, second}}
		w.sync(ctx, browser)
		So(w.sessions, ShouldHaveLength, 2)

		Convey("Each tab reconciles on its own", func() {
			first.fire("play", false)
			So(next(commands), ShouldEqual, reconcile.Suppress)
			second.fire("play", false)
			So(next(commands), ShouldEqual, reconcile.Suppress)
		})

		Convey("A confirmed pause restores", func() {
			first.fire("play", false)
			So(next(commands), ShouldEqual, reconcile.Suppress)
			first.fire("pause", true)
			So(next(commands), ShouldEqual, reconcile.Restore)
		})

		Convey("A pause followed by a seek emits nothing", func() {
			first.fire("play", false)
			So(next(commands), ShouldEqual, reconcile.Suppress)
			first.fire("pause", true)
			first.fire("seeking", true)
			time.Sleep(50 * time.Millisecond)
			So(commands, ShouldHaveLength, 0)

			first.fire("seeked", false)
			time.Sleep(20 * time.Millisecond)
			So(commands, ShouldHaveLength, 0)
		})

		Convey("Closing a playing tab restores and unhooks it", func() {
			first.fire("play", false)
			So(next(commands), ShouldEqual, reconcile.Suppress)

			browser.tabs = []tab{second}
			w.sync(ctx, browser)

			So(next(commands), ShouldEqual, reconcile.Restore)
			So(first.stopped, ShouldBeTrue)
			So(w.sessions, ShouldHaveLength, 1)
		})

		Convey("A listing failure keeps existing sessions", func() {
			browser.err = errors.New("websocket closed")
			w.sync(ctx, browser)
			So(w.sessions, ShouldHaveLength, 2)
		})
	})

	Convey("Given a tab that refuses the binding", t, func() {
		w := New(Config{}, reconcile.EmitterFunc(func(reconcile.Command) {}))
		browser := &fakeBrowser{tabs: []tab{&fakeTab{id: "devtools", hookErr: errors.New("not allowed")}}}

		Convey("It is remembered and not retried", func() {
			w.sync(context.Background(), browser)
			w.sync(context.Background(), browser)
			So(w.sessions, ShouldHaveLength, 1)
			So(w.sessions["devtools"].loop, ShouldBeNil)
		})
	})
}
