package reconcile

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a running loop with a real clock", t, func() {
		commands := make(chan Command, 8)
		core := New(EmitterFunc(func(c Command) { commands <- c }), WithConfirmDelay(10*time.Millisecond))
		loop := NewLoop(core)

		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() { errs <- loop.Run(ctx) }()
		Reset(cancel)

		Convey("Submit returns the outcome of the signal", func() {
			out, err := loop.Submit(ctx, NewSignal(SourceBridge, VideoStarted))
			So(err, ShouldBeNil)
			So(out.Changed(), ShouldBeTrue)
			So(out.After.Phase, ShouldEqual, Active)
			So(<-commands, ShouldEqual, Suppress)

			Convey("A confirmed pause is delivered through the inbox", func() {
				loop.Send(NewSignal(SourceWatcher, PauseDetected).WithPaused(true))

				select {
				case c := <-commands:
					So(c, ShouldEqual, Restore)
				case <-time.After(time.Second):
					So("no restore emitted", ShouldBeEmpty)
				}

				snap, err := loop.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(snap.Phase, ShouldEqual, Idle)
			})

			Convey("Stopping the loop restores playback", func() {
				cancel()
				So(<-errs, ShouldEqual, context.Canceled)
				So(<-commands, ShouldEqual, Restore)

				_, err := loop.Submit(context.Background(), NewSignal(SourceBridge, VideoStarted))
				So(err, ShouldEqual, ErrStopped)
			})
		})
	})
}
