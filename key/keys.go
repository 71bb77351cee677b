// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Focus Detection - these keys drive the foreground window poller used by toggle-video.
const (
	DetectInterval = "detect.interval_ms"
	DetectKeywords = "detect.keywords"
)

// Notification Server - these keys configure the local endpoint receiving browser playback notifications.
const (
	ServerHost             = "server.host"
	ServerPort             = "server.port"
	ServerStateLogInterval = "server.state_log_interval_s"
)

// Browser Watcher - these keys configure the DevTools-attached media event watcher.
const (
	WatcherDebuggerURL    = "watcher.debugger_url"
	WatcherLaunch         = "watcher.launch"
	WatcherHeadless       = "watcher.headless"
	WatcherBridgeURL      = "watcher.bridge_url"
	WatcherPauseConfirmMs = "watcher.pause_confirm_ms"
)

// Spotify Integration - these keys manage authentication and the remote playback API.
const (
	SpotifyClientID     = "spotify.client_id"
	SpotifyClientSecret = "spotify.client_secret"
	SpotifyRedirectURI  = "spotify.redirect_uri"
	SpotifyAPIURL       = "spotify.api_url"
	SpotifyRetryBudget  = "spotify.retry_budget"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-daemon application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
