package poller

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable means the platform offers no way to read the focused window.
var ErrUnavailable = errors.New("focus sampling unavailable")

// Window is the focused window as seen by a Sampler.
type Window struct {
	Title string
	// App is the owning process or application name.
	App string
}

// Empty reports whether the sample carries nothing to classify.
func (w Window) Empty() bool {
	return strings.TrimSpace(w.Title) == "" && strings.TrimSpace(w.App) == ""
}

// Sampler reads the currently focused window.
type Sampler interface {
	Sample(ctx context.Context) (Window, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) (Window, error)

func (f SamplerFunc) Sample(ctx context.Context) (Window, error) { return f(ctx) }

// parseActiveWindowID extracts the id from `xprop -root _NET_ACTIVE_WINDOW`,
// which prints "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3a00007".
func parseActiveWindowID(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) < 5 {
		return "", errors.New("unexpected xprop output")
	}
	id := fields[len(fields)-1]
	if id == "0x0" {
		return "", errors.New("no active window")
	}
	return id, nil
}

// parseXprop reads WM_NAME and WM_CLASS from `xprop -id <id> WM_NAME WM_CLASS`.
func parseXprop(out string) Window {
	var w Window
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "_NET_WM_NAME"), strings.HasPrefix(line, "WM_NAME"):
			if w.Title != "" {
				continue
			}
			if i := strings.Index(line, "= \""); i != -1 {
				if end := strings.LastIndex(line, "\""); end > i+3 {
					w.Title = line[i+3 : end]
				}
			}
		case strings.HasPrefix(line, "WM_CLASS"):
			// WM_CLASS(STRING) = "instance", "Class"
			if i := strings.Index(line, ", \""); i != -1 {
				if end := strings.LastIndex(line, "\""); end > i+3 {
					w.App = line[i+3 : end]
				}
			}
		}
	}
	return w
}

// parseOsascript reads the two lines printed by the macOS sampler script:
// application name, then front window title.
func parseOsascript(out string) Window {
	lines := strings.SplitN(strings.TrimRight(out, "\r\n"), "\n", 2)
	w := Window{App: strings.TrimSpace(lines[0])}
	if len(lines) == 2 {
		w.Title = strings.TrimSpace(lines[1])
	}
	return w
}
