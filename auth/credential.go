// Package auth implements the Spotify authorization collaborator: the OAuth2
// PKCE login flow, credential persistence in the system keyring, and token refresh.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotAuthenticated means no credential has been stored yet.
	ErrNotAuthenticated = errors.New("not authenticated, run `tacet auth login`")

	// ErrRefresh means the access token could not be renewed.
	ErrRefresh = errors.New("refresh access token")
)

// Credential is the bearer credential pair issued by the Spotify accounts service.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the access token's advertised lifetime has passed.
// A zero expiry is never considered expired.
func (c Credential) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}

// Authenticator hands out bearer credentials to the remote control client.
type Authenticator interface {
	// Credential returns the current credential or fails with ErrNotAuthenticated.
	Credential(ctx context.Context) (Credential, error)

	// Refresh obtains a new access token or fails with ErrRefresh.
	Refresh(ctx context.Context) (Credential, error)
}
