// Package player drives the media backend that renders clips.
// The primary implementation targets mpv through its JSON-IPC interface.
package player

import (
	"errors"
	"fmt"
)

// ErrBackendInit is returned when the backend cannot be started or reached.
var ErrBackendInit = errors.New("playback backend initialization failed")

// SeekFlags modify how a seek is performed.
type SeekFlags uint8

const (
	// SeekFlush discards queued frames so the new position shows immediately.
	SeekFlush SeekFlags = 1 << iota
	// SeekAccurate seeks to the exact position instead of the nearest keyframe.
	SeekAccurate
)

// Has reports whether all bits of flag are set.
func (f SeekFlags) Has(flag SeekFlags) bool {
	return f&flag == flag
}

// State is the requested playback state.
type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind classifies backend notifications.
type EventKind int

const (
	// EventEndOfStream is emitted when the current clip played to its end.
	EventEndOfStream EventKind = iota
	// EventError is emitted when the current clip failed to load or decode.
	EventError
	// EventLoaded is emitted once a source is ready to play.
	EventLoaded
	// EventPause is emitted when the backend's pause state changes, including from its own window.
	EventPause
)

func (k EventKind) String() string {
	switch k {
	case EventEndOfStream:
		return "end-of-stream"
	case EventError:
		return "error"
	case EventLoaded:
		return "loaded"
	case EventPause:
		return "pause"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a notification from the backend.
type Event struct {
	Kind EventKind
	// Message and Debug are set for EventError.
	Message string
	Debug   string
	// Paused is set for EventPause.
	Paused bool
	// Source is the uri given to SetSource for the file the event belongs to,
	// empty when the backend cannot tell.
	Source string
}

// Backend is what the rotation loop needs from a media player.
type Backend interface {
	// SetSource replaces the current media with uri.
	SetSource(uri string) error

	// Seek moves playback to an absolute position in seconds. A seek issued
	// while the source is still loading is applied once it has loaded.
	Seek(seconds float64, flags SeekFlags) error

	// SetState requests playing, paused or stopped.
	SetState(state State) error

	// Events delivers notifications. The channel is closed when the backend goes away.
	Events() <-chan Event

	// Close terminates the backend and releases its resources.
	Close() error
}
