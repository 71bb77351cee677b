package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tacet-cli/tacet/auth"
)

type fakeAuth struct {
	mu        sync.Mutex
	token     string
	refreshes  int
	err        error
	refreshErr error
}

func (f *fakeAuth) Credential(context.Context) (auth.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return auth.Credential{}, f.err
	}
	return auth.Credential{AccessToken: f.token}, nil
}

func (f *fakeAuth) Refresh(context.Context) (auth.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return auth.Credential{}, f.refreshErr
	}
	f.token = "refreshed"
	return auth.Credential{AccessToken: f.token}, nil
}

// fakeAPI answers each request with the next scripted status and records what it saw.
type fakeAPI struct {
	mu       sync.Mutex
	statuses []int
	bodies   []string
	requests []*http.Request
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.requests)
	f.requests = append(f.requests, r)

	status, body := http.StatusNoContent, ""
	if i < len(f.statuses) {
		status = f.statuses[i]
	}
	if i < len(f.bodies) {
		body = f.bodies[i]
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

const (
	expiredBody  = `{"error":{"status":401,"message":"The access token expired"}}`
	noDeviceBody = `{"error":{"status":404,"message":"Player command failed: No active device found","reason":"NO_ACTIVE_DEVICE"}}`
)

func newTestClient(api *fakeAPI, a auth.Authenticator, opts ...Option) *Client {
	srv := httptest.NewServer(api)
	Reset(srv.Close)
	return New(a, append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)...)
}

func TestCommands(t *testing.T) {
	Convey("Given an authenticated client", t, func() {
		a := &fakeAuth{token: "initial"}
		api := &fakeAPI{}
		client := newTestClient(api, a)
		ctx := context.Background()

		Convey("Each operation hits its endpoint once with the bearer token", func() {
			So(client.Pause(ctx), ShouldBeNil)
			So(client.Resume(ctx), ShouldBeNil)
			So(client.Next(ctx), ShouldBeNil)
			So(client.Previous(ctx), ShouldBeNil)

			So(api.calls(), ShouldEqual, 4)
			So(api.requests[0].Method, ShouldEqual, http.MethodPut)
			So(api.requests[0].URL.Path, ShouldEqual, "/me/player/pause")
			So(api.requests[1].Method, ShouldEqual, http.MethodPut)
			So(api.requests[1].URL.Path, ShouldEqual, "/me/player/play")
			So(api.requests[2].Method, ShouldEqual, http.MethodPost)
			So(api.requests[2].URL.Path, ShouldEqual, "/me/player/next")
			So(api.requests[3].Method, ShouldEqual, http.MethodPost)
			So(api.requests[3].URL.Path, ShouldEqual, "/me/player/previous")
			So(api.requests[0].Header.Get("Authorization"), ShouldEqual, "Bearer initial")
			So(a.refreshes, ShouldEqual, 0)
		})

		Convey("An expired token is refreshed once and the command retried once", func() {
			api.statuses = []int{http.StatusUnauthorized, http.StatusNoContent}
			api.bodies = []string{expiredBody}

			So(client.Pause(ctx), ShouldBeNil)
			So(a.refreshes, ShouldEqual, 1)
			So(api.calls(), ShouldEqual, 2)
			So(api.requests[1].Header.Get("Authorization"), ShouldEqual, "Bearer refreshed")
		})

		Convey("A second expiry in a row is surfaced without another retry", func() {
			api.statuses = []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusNoContent}
			api.bodies = []string{expiredBody, expiredBody}

			err := client.Resume(ctx)
			So(errors.Is(err, ErrTokenExpired), ShouldBeTrue)
			So(a.refreshes, ShouldEqual, 1)
			So(api.calls(), ShouldEqual, 2)
		})

		Convey("No active device is neither refreshed nor retried", func() {
			api.statuses = []int{http.StatusNotFound}
			api.bodies = []string{noDeviceBody}

			err := client.Pause(ctx)
			So(errors.Is(err, ErrNoActiveDevice), ShouldBeTrue)
			So(a.refreshes, ShouldEqual, 0)
			So(api.calls(), ShouldEqual, 1)

			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Reason, ShouldEqual, "NO_ACTIVE_DEVICE")
		})

		Convey("A plain 404 is not mistaken for a missing device", func() {
			api.statuses = []int{http.StatusNotFound}
			api.bodies = []string{`{"error":{"status":404,"message":"Service not found"}}`}

			err := client.Next(ctx)
			So(errors.Is(err, ErrOther), ShouldBeTrue)
			So(errors.Is(err, ErrNoActiveDevice), ShouldBeFalse)
		})

		Convey("An overloaded upstream is transient and not retried", func() {
			api.statuses = []int{http.StatusServiceUnavailable}

			err := client.Previous(ctx)
			So(errors.Is(err, ErrTransientNetwork), ShouldBeTrue)
			So(api.calls(), ShouldEqual, 1)
		})

		Convey("A failed refresh is surfaced without resending", func() {
			a.refreshErr = auth.ErrRefresh
			api.statuses = []int{http.StatusUnauthorized}
			api.bodies = []string{expiredBody}

			err := client.Pause(ctx)
			So(errors.Is(err, auth.ErrRefresh), ShouldBeTrue)
			So(a.refreshes, ShouldEqual, 1)
			So(api.calls(), ShouldEqual, 1)
		})

		Convey("A larger budget allows consecutive refreshes", func() {
			client := newTestClient(api, a, WithRetryBudget(2))
			api.statuses = []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusNoContent}
			api.bodies = []string{expiredBody, expiredBody}

			So(client.Resume(ctx), ShouldBeNil)
			So(a.refreshes, ShouldEqual, 2)
			So(api.calls(), ShouldEqual, 3)
		})

		Convey("A zero budget surfaces the first expiry", func() {
			client := newTestClient(api, a, WithRetryBudget(0))
			api.statuses = []int{http.StatusUnauthorized}

			err := client.Pause(ctx)
			So(errors.Is(err, ErrTokenExpired), ShouldBeTrue)
			So(a.refreshes, ShouldEqual, 0)
		})
	})

	Convey("Given no stored credential", t, func() {
		api := &fakeAPI{}
		client := newTestClient(api, &fakeAuth{err: auth.ErrNotAuthenticated})

		Convey("Nothing is sent", func() {
			err := client.Pause(context.Background())
			So(errors.Is(err, auth.ErrNotAuthenticated), ShouldBeTrue)
			So(api.calls(), ShouldEqual, 0)
		})
	})

	Convey("Given an unreachable API", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		client := New(&fakeAuth{token: "t"}, WithBaseURL(url))

		Convey("The failure is transient", func() {
			err := client.Pause(context.Background())
			So(errors.Is(err, ErrTransientNetwork), ShouldBeTrue)
		})
	})
}

func TestDevices(t *testing.T) {
	Convey("Given an authenticated client", t, func() {
		api := &fakeAPI{}
		client := newTestClient(api, &fakeAuth{token: "t"})

		Convey("Devices are returned in API order", func() {
			api.statuses = []int{http.StatusOK}
			api.bodies = []string{`{"devices":[
				{"id":"a","name":"Laptop","type":"Computer","is_active":true},
				{"id":"b","name":"Kitchen","type":"Speaker","is_active":false}
			]}`}

			devices, err := client.Devices(context.Background())
			So(err, ShouldBeNil)
			So(devices, ShouldHaveLength, 2)
			So(devices[0].String(), ShouldEqual, "Laptop (Computer)")
			So(devices[0].Active, ShouldBeTrue)
			So(devices[1].String(), ShouldEqual, "Kitchen (Speaker)")
		})

		Convey("No devices yields an empty list", func() {
			api.statuses = []int{http.StatusOK}
			api.bodies = []string{`{"devices":[]}`}

			devices, err := client.Devices(context.Background())
			So(err, ShouldBeNil)
			So(devices, ShouldNotBeNil)
			So(devices, ShouldBeEmpty)
		})

		Convey("An expired token is refreshed for listing too", func() {
			api.statuses = []int{http.StatusUnauthorized, http.StatusOK}
			api.bodies = []string{expiredBody, `{"devices":[{"name":"Phone","type":"Smartphone"}]}`}

			devices, err := client.Devices(context.Background())
			So(err, ShouldBeNil)
			So(devices, ShouldHaveLength, 1)
		})
	})
}
