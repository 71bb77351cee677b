// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Tacet is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Tacet = "tacet"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// Repository is the GitHub slug used for release discovery.
	Repository = "tacet-cli/tacet"
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
