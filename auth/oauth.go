package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/network"
	"golang.org/x/oauth2"
)

// OAuth holds the application registration used against the accounts service.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	HTTP         *http.Client
}

// OAuthFromConfig builds the registration from the global configuration.
func OAuthFromConfig() OAuth {
	return OAuth{
		ClientID:     viper.GetString(key.SpotifyClientID),
		ClientSecret: viper.GetString(key.SpotifyClientSecret),
		RedirectURI:  viper.GetString(key.SpotifyRedirectURI),
		AuthorizeURL: constant.SpotifyAuthorize,
		TokenURL:     constant.SpotifyToken,
		HTTP:         network.Client,
	}
}

// config maps the registration onto an oauth2 client. Public clients send
// their id in the form since there is no secret to authenticate with.
func (o OAuth) config() *oauth2.Config {
	style := oauth2.AuthStyleInHeader
	if o.ClientSecret == "" {
		style = oauth2.AuthStyleInParams
	}

	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURI,
		Scopes:       strings.Fields(constant.SpotifyScopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:   o.AuthorizeURL,
			TokenURL:  o.TokenURL,
			AuthStyle: style,
		},
	}
}

func (o OAuth) context(ctx context.Context) context.Context {
	client := o.HTTP
	if client == nil {
		client = network.Client
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// AuthURL constructs the authorization URI for the PKCE flow.
func (o OAuth) AuthURL(verifier, state string) string {
	return o.config().AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a credential.
func (o OAuth) Exchange(ctx context.Context, code, verifier string) (Credential, error) {
	token, err := o.config().Exchange(o.context(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Credential{}, fmt.Errorf("exchange code: %w", err)
	}
	return credentialFrom(token), nil
}

// refresh renews the access token. The accounts service may omit the refresh
// token in its reply, in which case the previous one stays valid.
func (o OAuth) refresh(ctx context.Context, previous Credential) (Credential, error) {
	// Without an access token the source always goes to the token endpoint.
	source := o.config().TokenSource(o.context(ctx), &oauth2.Token{RefreshToken: previous.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return Credential{}, err
	}

	c := credentialFrom(token)
	if c.RefreshToken == "" {
		c.RefreshToken = previous.RefreshToken
	}
	if c.Scope == "" {
		c.Scope = previous.Scope
	}
	return c, nil
}

func credentialFrom(token *oauth2.Token) Credential {
	c := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		c.Scope = scope
	}
	return c
}
