// Package spotify is a typed client for the playback endpoints of the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/auth"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/network"
	"github.com/tacet-cli/tacet/util"
)

// Device is a Spotify Connect playback target.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"is_active"`
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Type)
}

// Client issues playback commands on behalf of the authenticated user.
type Client struct {
	baseURL string
	auth    auth.Authenticator
	http    *http.Client
	budget  int
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetryBudget sets how many token refreshes one operation may perform.
func WithRetryBudget(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.budget = n
		}
	}
}

// New returns a client against the public API with a refresh budget of one.
func New(a auth.Authenticator, opts ...Option) *Client {
	c := &Client{
		baseURL: constant.SpotifyAPI,
		auth:    a,
		http:    network.Client,
		budget:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig returns a client configured from the global configuration.
func NewFromConfig(a auth.Authenticator) *Client {
	opts := []Option{WithRetryBudget(viper.GetInt(key.SpotifyRetryBudget))}
	if u := viper.GetString(key.SpotifyAPIURL); u != "" {
		opts = append(opts, WithBaseURL(u))
	}
	return New(a, opts...)
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/pause")
}

// Resume resumes playback on the active device.
func (c *Client) Resume(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/play")
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/next")
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/previous")
}

// Devices lists the user's available devices in the order Spotify returns them.
// The result is empty, not nil, when there are none.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	return withRefresh(ctx, c.auth, c.budget, func(ctx context.Context, token string) ([]Device, error) {
		var body struct {
			Devices []Device `json:"devices"`
		}
		if err := c.do(ctx, token, http.MethodGet, "/me/player/devices", &body); err != nil {
			return nil, err
		}
		if body.Devices == nil {
			return []Device{}, nil
		}
		return body.Devices, nil
	})
}

func (c *Client) command(ctx context.Context, method, path string) error {
	_, err := withRefresh(ctx, c.auth, c.budget, func(ctx context.Context, token string) (struct{}, error) {
		return struct{}{}, c.do(ctx, token, method, path, nil)
	})
	return err
}

// do performs a single authenticated request. A non-nil out receives the decoded JSON body.
func (c *Client) do(ctx context.Context, token, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrOther, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	logger := log.Component("spotify").WithField("endpoint", method+" "+path)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.WithError(err).Debug("request failed")
		return fmt.Errorf("%w: %w", ErrTransientNetwork, err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classify(resp)
		logger.WithField("status", resp.StatusCode).Debug(apiErr.Error())
		return apiErr
	}

	logger.WithField("status", resp.StatusCode).Debug("ok")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrOther, err)
	}
	return nil
}
