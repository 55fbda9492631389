// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Clip Library - these keys locate the clip library and decide which files belong to it.
const (
	LibraryPath       = "library.path"
	LibraryExtensions = "library.extensions"
)

// Rotation - these keys tune the advancement scheduler.
const (
	RotationIntervalMs    = "rotation.interval_ms"
	RotationSafetyMargin  = "rotation.safety_margin"
	RotationFreezeOnPause = "rotation.freeze_on_pause"
	RotationSeed          = "rotation.seed"
)

// Media Playback - these keys configure the external mpv process.
const (
	PlayerBinary     = "player.binary"
	PlayerFullscreen = "player.fullscreen"
	PlayerMute       = "player.mute"
	PlayerExtraArgs  = "player.extra_args"
)

// Metadata Discovery - these keys select and bound the duration probe.
const (
	ProbeBackend = "probe.backend"
	ProbeTimeout = "probe.timeout"
	ProbePrewarm = "probe.prewarm"
	ProbeWorkers = "probe.workers"
)

// Duration Cache
const (
	CachePersist = "cache.persist"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
