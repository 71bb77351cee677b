package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tacet-cli/tacet/reconcile"
	"github.com/tacet-cli/tacet/spotify"
)

type fakeController struct {
	mu    sync.Mutex
	calls []Action
	err   error
}

func (f *fakeController) record(a Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, a)
	return f.err
}

func (f *fakeController) Pause(context.Context) error    { return f.record(Pause) }
func (f *fakeController) Resume(context.Context) error   { return f.record(Resume) }
func (f *fakeController) Next(context.Context) error     { return f.record(Next) }
func (f *fakeController) Previous(context.Context) error { return f.record(Previous) }
func (f *fakeController) Devices(context.Context) ([]spotify.Device, error) {
	if err := f.record(Devices); err != nil {
		return nil, err
	}
	return []spotify.Device{{Name: "Laptop", Type: "Computer"}}, nil
}

func (f *fakeController) recorded() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Action(nil), f.calls...)
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Accepts names and aliases", func() {
			for input, want := range map[string]Action{
				"pause": Pause, "p": Pause,
				"resume": Resume, "r": Resume,
				"devices": Devices, "d": Devices,
				"next": Next, "n": Next,
				"previous": Previous, "prev": Previous,
				" PAUSE ": Pause,
			} {
				got, err := Parse(input)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Rejects anything else", func() {
			_, err := Parse("shuffle")
			So(errors.Is(err, ErrUnknownAction), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a dispatcher", t, func() {
		controller := &fakeController{}
		d := New(controller)
		ctx := context.Background()

		Convey("Each action calls its operation", func() {
			for _, a := range Actions {
				_, err := d.Run(ctx, a)
				So(err, ShouldBeNil)
			}
			So(controller.recorded(), ShouldResemble, Actions)
		})

		Convey("Devices are returned", func() {
			result, err := d.Run(ctx, Devices)
			So(err, ShouldBeNil)
			So(result.Devices, ShouldHaveLength, 1)
			So(result.Devices[0].Name, ShouldEqual, "Laptop")
		})

		Convey("Failures keep their class", func() {
			controller.err = spotify.ErrNoActiveDevice
			_, err := d.Run(ctx, Pause)
			So(errors.Is(err, spotify.ErrNoActiveDevice), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "pause:")
		})

		Convey("Unknown actions are rejected without a call", func() {
			_, err := d.Run(ctx, Action("shuffle"))
			So(errors.Is(err, ErrUnknownAction), ShouldBeTrue)
			So(controller.recorded(), ShouldBeEmpty)
		})
	})
}

func TestAsync(t *testing.T) {
	Convey("Given an async dispatcher", t, func() {
		controller := &fakeController{}
		async := NewAsync(New(controller), time.Second)

		Convey("Commands run in emission order", func() {
			async.Emit(reconcile.Suppress)
			async.Emit(reconcile.Restore)
			async.Emit(reconcile.Suppress)

			So(async.Close(time.Second), ShouldBeTrue)
			So(controller.recorded(), ShouldResemble, []Action{Pause, Resume, Pause})
		})

		Convey("Failures do not stop the worker", func() {
			controller.err = spotify.ErrTransientNetwork
			async.Emit(reconcile.Suppress)
			async.Emit(reconcile.Restore)

			So(async.Close(time.Second), ShouldBeTrue)
			So(controller.recorded(), ShouldHaveLength, 2)
		})

		Convey("Commands after close are dropped", func() {
			So(async.Close(time.Second), ShouldBeTrue)
			async.Emit(reconcile.Suppress)
			So(controller.recorded(), ShouldBeEmpty)
			So(async.Close(time.Second), ShouldBeTrue)
		})
	})
}
