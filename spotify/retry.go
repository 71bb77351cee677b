package spotify

import (
	"context"
	"errors"

	"github.com/avast/retry-go/v5"
	"github.com/tacet-cli/tacet/auth"
	"github.com/tacet-cli/tacet/log"
)

// withRefresh runs op with the current access token. When op reports an
// expired token, the credential is refreshed and op is run again, at most
// budget times. Any other outcome is returned as is.
func withRefresh[T any](
	ctx context.Context,
	authenticator auth.Authenticator,
	budget int,
	op func(ctx context.Context, token string) (T, error),
) (T, error) {
	var zero T

	credential, err := authenticator.Credential(ctx)
	if err != nil {
		return zero, err
	}

	// Zero attempts means unlimited to retry-go.
	attempts := uint(max(budget, 0)) + 1

	var (
		result  T
		refresh bool
	)
	err = retry.New(
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrTokenExpired)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Component("spotify").WithField("attempt", n+1).Debug("access token rejected, refreshing")
			refresh = true
		}),
	).Do(func() error {
		if refresh {
			refresh = false
			renewed, err := authenticator.Refresh(ctx)
			if err != nil {
				return err
			}
			credential = renewed
		}

		var err error
		result, err = op(ctx, credential.AccessToken)
		return err
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}
