package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/tacet-cli/tacet/log"
	"golang.org/x/oauth2"
)

const successHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Successful</title>
    <style>
        body { margin: 0; background-color: #121212; color: #ffffff; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; text-align: center; }
        h1 { font-size: 24px; font-weight: 500; color: #1db954; }
        p { font-size: 15px; color: #a7a7a7; }
    </style>
</head>
<body>
    <div>
        <h1>Spotify connected</h1>
        <p>You may safely close this tab and return to the terminal.</p>
    </div>
</body>
</html>`

const errorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Failed</title>
    <style>
        body { margin: 0; background-color: #121212; color: #ffffff; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; text-align: center; }
        h1 { font-size: 24px; font-weight: 500; color: #ff5555; }
        p { font-size: 15px; color: #a7a7a7; }
    </style>
</head>
<body>
    <div>
        <h1>Authentication Failed</h1>
        <p>%s</p>
    </div>
</body>
</html>`

// LoginTimeout bounds how long Login waits for the browser redirect.
const LoginTimeout = 2 * time.Minute

// Login runs the authorization code flow with PKCE: it starts a callback
// server on the redirect URI, hands the authorization URL to openBrowser,
// waits for the redirect and exchanges the code for a credential.
func Login(ctx context.Context, o OAuth, openBrowser func(string) error) (Credential, error) {
	if o.ClientID == "" {
		return Credential{}, errors.New("spotify client id is not configured")
	}

	redirect, err := url.Parse(o.RedirectURI)
	if err != nil {
		return Credential{}, fmt.Errorf("parse redirect uri: %w", err)
	}

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return Credential{}, fmt.Errorf("callback listener: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath(redirect), func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "text/html")

		reject := func(msg string) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorHTML, html.EscapeString(msg))
		}
		fail := func(msg string) {
			reject(msg)
			select {
			case errCh <- errors.New(msg):
			default:
			}
		}

		// Requests without our state are not the redirect we wait for.
		switch {
		case q.Get("state") != state:
			log.Component("auth").WithField("remote", r.RemoteAddr).Warn("ignoring callback with mismatched state")
			reject("State mismatch in redirect")
		case q.Get("error") != "":
			fail("Spotify denied the request: " + q.Get("error"))
		case q.Get("code") == "":
			fail("No code found in redirect URL")
		default:
			select {
			case codeCh <- q.Get("code"):
			default:
			}
			fmt.Fprint(w, successHTML)
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("callback server: %w", err):
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := o.AuthURL(verifier, state)
	if openBrowser != nil {
		if err := openBrowser(authURL); err != nil {
			log.Warn("failed to open browser: " + err.Error())
		}
	}
	log.Component("auth").WithField("addr", redirect.Host).Info("waiting for authorization callback")

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return Credential{}, err
	case <-time.After(LoginTimeout):
		return Credential{}, errors.New("authentication timed out")
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	}

	return o.Exchange(ctx, code, verifier)
}

func callbackPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
