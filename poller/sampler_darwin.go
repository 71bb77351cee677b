//go:build darwin

package poller

import (
	"context"
	"fmt"
	"os/exec"
)

const frontWindowScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	set winTitle to ""
	try
		set winTitle to name of front window of frontApp
	end try
end tell
return appName & linefeed & winTitle`

type osascriptSampler struct{}

// NewSampler returns the macOS sampler. It needs the accessibility permission
// for the terminal running tacet.
func NewSampler() Sampler {
	return osascriptSampler{}
}

func (osascriptSampler) Sample(ctx context.Context) (Window, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", frontWindowScript).Output()
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return parseOsascript(string(out)), nil
}
