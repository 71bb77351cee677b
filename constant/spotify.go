package constant

// Spotify service endpoints.
const (
	SpotifyAPI       = "https://api.spotify.com/v1"
	SpotifyAccounts  = "https://accounts.spotify.com"
	SpotifyAuthorize = SpotifyAccounts + "/authorize"
	SpotifyToken     = SpotifyAccounts + "/api/token"
)

// SpotifyScopes are the OAuth scopes required to read devices and control playback.
const SpotifyScopes = "user-modify-playback-state user-read-playback-state"
