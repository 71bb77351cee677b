package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tacet-cli/tacet/constant"
	"github.com/zalando/go-keyring"
)

const keyringUser = "spotify-token"

// Store persists credentials in the system keyring.
type Store struct {
	Service string
}

// NewStore returns a store scoped to the application's keyring service.
func NewStore() *Store {
	return &Store{Service: constant.Tacet}
}

// Save serializes and persists the credential.
func (s *Store) Save(c Credential) error {
	bytes, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return keyring.Set(s.Service, keyringUser, string(bytes))
}

// Load retrieves the stored credential. A missing entry yields ErrNotAuthenticated.
func (s *Store) Load() (Credential, error) {
	str, err := keyring.Get(s.Service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credential{}, ErrNotAuthenticated
	}
	if err != nil {
		return Credential{}, fmt.Errorf("read keyring: %w", err)
	}

	var c Credential
	if err := json.Unmarshal([]byte(str), &c); err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	if c.AccessToken == "" {
		return Credential{}, ErrNotAuthenticated
	}
	return c, nil
}

// Delete removes the stored credential. Deleting a missing entry is not an error.
func (s *Store) Delete() error {
	err := keyring.Delete(s.Service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
