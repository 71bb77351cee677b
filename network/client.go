// Package network provides the pre-configured HTTP clients shared across the application.
package network

import (
	"net/http"
	"time"
)

// Client is used for calls to the Spotify Web API and accounts service.
var Client = &http.Client{
	Timeout:   15 * time.Second,
	Transport: newTransport(),
}

// Local talks to the notification server on this machine. Notifications are
// fire-and-forget, so a short timeout keeps stuck calls from piling up.
var Local = &http.Client{
	Timeout: 3 * time.Second,
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	return t
}
