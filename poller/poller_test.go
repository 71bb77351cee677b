package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tacet-cli/tacet/reconcile"
)

type scripted struct {
	samples []Window
	errs    []error
	i       int
}

func (s *scripted) Sample(context.Context) (Window, error) {
	i := s.i
	s.i++
	if i < len(s.errs) && s.errs[i] != nil {
		return Window{}, s.errs[i]
	}
	if i < len(s.samples) {
		return s.samples[i], nil
	}
	return Window{}, nil
}

func TestClassifier(t *testing.T) {
	Convey("Given the default keywords", t, func() {
		c := NewClassifier(DefaultKeywords)

		Convey("Titles and app names match case-insensitively", func() {
			So(c.IsVideo(Window{Title: "Stranger Things - NETFLIX"}), ShouldBeTrue)
			So(c.IsVideo(Window{Title: "player", App: "vimeo-desktop"}), ShouldBeTrue)
			So(c.IsVideo(Window{Title: "Inbox", App: "Mail"}), ShouldBeFalse)
		})
	})

	Convey("Blank and duplicate keywords are dropped", t, func() {
		c := NewClassifier([]string{" Plex ", "", "plex", "  "})
		So(c.Keywords(), ShouldResemble, []string{"plex"})
		So(c.IsVideo(Window{Title: "Inbox"}), ShouldBeFalse)
	})
}

func TestTick(t *testing.T) {
	Convey("Given a poller over a scripted sampler", t, func() {
		var emitted []reconcile.Kind
		emit := func(s reconcile.Signal) {
			So(s.Source, ShouldEqual, reconcile.SourcePoller)
			emitted = append(emitted, s.Kind)
		}
		ctx := context.Background()

		Convey("Focus moving between mail and video is edge-triggered", func() {
			sampler := &scripted{samples: []Window{
				{Title: "Inbox - Mail", App: "Mail"},
				{Title: "Stranger Things - Netflix", App: "Browser"},
				{Title: "Stranger Things - Netflix", App: "Browser"},
				{Title: "Inbox", App: "Mail"},
			}}
			p := New(sampler, emit)

			for range sampler.samples {
				p.Tick(ctx)
			}
			So(emitted, ShouldResemble, []reconcile.Kind{reconcile.VideoStarted, reconcile.VideoStopped})
		})

		Convey("Missing window data is not treated as stopped", func() {
			sampler := &scripted{
				samples: []Window{{Title: "Twitch", App: "Browser"}, {}, {}, {Title: "Twitch", App: "Browser"}},
				errs:    []error{nil, nil, errors.New("xdotool: exit status 1")},
			}
			p := New(sampler, emit)

			for range sampler.samples {
				p.Tick(ctx)
			}
			So(emitted, ShouldResemble, []reconcile.Kind{reconcile.VideoStarted})
		})

		Convey("Reloaded keywords apply to the next sample", func() {
			sampler := &scripted{samples: []Window{{Title: "Plex"}, {Title: "Plex"}}}
			p := New(sampler, emit)

			So(p.Tick(ctx).IsAbsent(), ShouldBeTrue)
			p.Reload(time.Second, []string{"plex"})
			So(p.Tick(ctx).MustGet(), ShouldEqual, reconcile.VideoStarted)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running poller", t, func() {
		signals := make(chan reconcile.Signal, 4)
		sampler := SamplerFunc(func(context.Context) (Window, error) {
			return Window{Title: "YouTube"}, nil
		})
		p := New(sampler, func(s reconcile.Signal) { signals <- s }, WithInterval(5*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() { errs <- p.Run(ctx) }()

		Convey("The first sample is taken immediately and repeats are silent", func() {
			So((<-signals).Kind, ShouldEqual, reconcile.VideoStarted)
			time.Sleep(30 * time.Millisecond)
			So(signals, ShouldHaveLength, 0)

			cancel()
			So(<-errs, ShouldEqual, context.Canceled)
		})
	})
}

func TestParsers(t *testing.T) {
	Convey("xprop output", t, func() {
		id, err := parseActiveWindowID("_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3a00007\n")
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "0x3a00007")

		_, err = parseActiveWindowID("_NET_ACTIVE_WINDOW(WINDOW): window id # 0x0\n")
		So(err, ShouldNotBeNil)

		w := parseXprop(`_NET_WM_NAME(UTF8_STRING) = "Stranger Things - Netflix - Mozilla Firefox"
WM_NAME(STRING) = "Stranger Things"
WM_CLASS(STRING) = "Navigator", "firefox"
`)
		So(w.Title, ShouldEqual, "Stranger Things - Netflix - Mozilla Firefox")
		So(w.App, ShouldEqual, "firefox")
	})

	Convey("osascript output", t, func() {
		w := parseOsascript("Safari\nTwitch\n")
		So(w, ShouldResemble, Window{App: "Safari", Title: "Twitch"})

		w = parseOsascript("Finder\n")
		So(w, ShouldResemble, Window{App: "Finder"})
		So(Window{Title: "  "}.Empty(), ShouldBeTrue)
	})
}
