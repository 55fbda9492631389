// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "clipshuffle"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// LogFile is the name of the log file written next to the clip library.
	LogFile = App + ".log"
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
