//go:build linux

package poller

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type x11Sampler struct{}

// NewSampler returns the X11 sampler. It uses xdotool and falls back to xprop.
func NewSampler() Sampler {
	return x11Sampler{}
}

func (x11Sampler) Sample(ctx context.Context) (Window, error) {
	if os.Getenv("DISPLAY") == "" {
		return Window{}, fmt.Errorf("%w: no X11 display", ErrUnavailable)
	}

	if w, err := sampleXdotool(ctx); err == nil {
		return w, nil
	}
	return sampleXprop(ctx)
}

func sampleXdotool(ctx context.Context) (Window, error) {
	out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow").Output()
	if err != nil {
		return Window{}, err
	}
	id := strings.TrimSpace(string(out))

	var w Window
	if out, err := exec.CommandContext(ctx, "xdotool", "getwindowname", id).Output(); err == nil {
		w.Title = strings.TrimSpace(string(out))
	}
	if out, err := exec.CommandContext(ctx, "xdotool", "getwindowpid", id).Output(); err == nil {
		w.App = processName(strings.TrimSpace(string(out)))
	}
	return w, nil
}

func sampleXprop(ctx context.Context) (Window, error) {
	out, err := exec.CommandContext(ctx, "xprop", "-root", "_NET_ACTIVE_WINDOW").Output()
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	id, err := parseActiveWindowID(string(out))
	if err != nil {
		return Window{}, err
	}

	out, err = exec.CommandContext(ctx, "xprop", "-id", id, "_NET_WM_NAME", "WM_NAME", "WM_CLASS").Output()
	if err != nil {
		return Window{}, err
	}
	return parseXprop(string(out)), nil
}

func processName(pid string) string {
	if pid == "" {
		return ""
	}
	if comm, err := os.ReadFile(filepath.Join("/proc", pid, "comm")); err == nil {
		return strings.TrimSpace(string(comm))
	}
	if exe, err := os.Readlink(filepath.Join("/proc", pid, "exe")); err == nil {
		return filepath.Base(exe)
	}
	return ""
}
