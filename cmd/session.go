package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tacet-cli/tacet/auth"
	"github.com/tacet-cli/tacet/dispatch"
	"github.com/tacet-cli/tacet/spotify"
)

// shutdownGrace bounds how long a continuous mode waits for queued commands on exit.
const shutdownGrace = 3 * time.Second

func newAuthenticator() *auth.Keyring {
	return auth.NewKeyring(auth.NewStore(), auth.OAuthFromConfig())
}

func newDispatcher() *dispatch.Dispatcher {
	return dispatch.New(spotify.NewFromConfig(newAuthenticator()))
}

// requireCredential fails early so continuous modes do not start unauthenticated.
func requireCredential(ctx context.Context) error {
	_, err := newAuthenticator().Credential(ctx)
	return err
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
