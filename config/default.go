// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/color"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/key"
	"github.com/tacet-cli/tacet/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	// Aliases are additional environment variables honoured for this field,
	// kept for compatibility with the unprefixed names users already export.
	Aliases []string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Tacet + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string   `json:"key"`
		Value       any      `json:"value"`
		Default     any      `json:"default"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Env         []string `json:"env"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Env:         append([]string{f.Env()}, f.Aliases...),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, aliases ...string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, Aliases: aliases}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.DetectInterval, 5000, "Foreground window sampling interval in milliseconds", "POLLING_INTERVAL")
	register(key.DetectKeywords, "YouTube,Netflix,Vimeo,Twitch,Video", "Comma separated keywords marking a window as video.\nMatched case-insensitively against the window title and application name", "VIDEO_KEYWORDS")
	register(key.ServerHost, "localhost", "Address the notification server binds to")
	register(key.ServerPort, 8888, "Port of the notification server", "PORT")
	register(key.ServerStateLogInterval, 60, "Seconds between periodic state log lines of the notification server.\n0 disables them")
	register(key.WatcherDebuggerURL, "", "DevTools endpoint of an already running Chromium (e.g. http://127.0.0.1:9222).\nLeave empty to launch one")
	register(key.WatcherLaunch, true, "Launch a browser when no debugger URL is configured")
	register(key.WatcherHeadless, false, "Run the launched browser headless")
	register(key.WatcherBridgeURL, "http://localhost:8888", "Base URL of the notification server the watcher reports to")
	register(key.WatcherPauseConfirmMs, 500, "Delay in milliseconds before a pause is trusted.\nSeeking during the delay cancels it")
	register(key.SpotifyClientID, "", "Spotify application client ID", "SPOTIFY_CLIENT_ID")
	register(key.SpotifyClientSecret, "", "Spotify application client secret.\nOptional, PKCE is used when empty", "SPOTIFY_CLIENT_SECRET")
	register(key.SpotifyRedirectURI, "http://127.0.0.1:8889/callback", "OAuth redirect URI registered for the Spotify application", "SPOTIFY_REDIRECT_URI")
	register(key.SpotifyAPIURL, constant.SpotifyAPI, "Base URL of the Spotify Web API")
	register(key.SpotifyRetryBudget, 1, "How many times a command is retried after refreshing an expired token")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs to the logs directory instead of stderr")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"join":     strings.Join,
	"wrap":     func(s string) string { return wordwrap.String(s, 80) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}{{ if .Aliases }} {{ faint (join .Aliases ", ") }}{{ end }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
