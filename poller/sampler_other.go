//go:build !darwin && !linux && !windows

package poller

import (
	"context"
	"fmt"
	"runtime"
)

// NewSampler returns a sampler that always fails on this platform.
func NewSampler() Sampler {
	return SamplerFunc(func(context.Context) (Window, error) {
		return Window{}, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
	})
}
