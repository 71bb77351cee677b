package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tacet-cli/tacet/log"
)

// Keyring is the Authenticator backed by the system keyring.
// It is safe for concurrent use; refreshes are serialized.
type Keyring struct {
	store *Store
	oauth OAuth

	mu sync.Mutex
}

// NewKeyring returns an authenticator reading from store and refreshing through oauth.
func NewKeyring(store *Store, oauth OAuth) *Keyring {
	return &Keyring{store: store, oauth: oauth}
}

// Credential returns the stored credential.
func (k *Keyring) Credential(_ context.Context) (Credential, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.store.Load()
}

// Refresh exchanges the stored refresh token for a new access token and persists it.
func (k *Keyring) Refresh(ctx context.Context) (Credential, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	current, err := k.store.Load()
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return Credential{}, err
		}
		return Credential{}, fmt.Errorf("%w: %w", ErrRefresh, err)
	}
	if current.RefreshToken == "" {
		return Credential{}, fmt.Errorf("%w: no refresh token stored", ErrRefresh)
	}

	renewed, err := k.oauth.refresh(ctx, current)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	if err := k.store.Save(renewed); err != nil {
		return Credential{}, fmt.Errorf("%w: persist: %w", ErrRefresh, err)
	}

	log.Component("auth").Info("access token refreshed")
	return renewed, nil
}
