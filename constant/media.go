package constant

import "time"

// VideoExtensions lists the file extensions recognized as clips, lowercase with the leading dot.
var VideoExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".webm"}

const (
	// RotationInterval is the fixed period between forced clip switches.
	RotationInterval = 7 * time.Second

	// SafetyMargin is the minimum remaining playback, in seconds, left after a random start offset.
	SafetyMargin = 15

	// DefaultLibraryPath is the library root used when none is given.
	DefaultLibraryPath = "./videos"
)
