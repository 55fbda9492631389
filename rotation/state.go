package rotation

import (
	"fmt"
	"time"

	"github.com/clipshuffle/clipshuffle/library"
	"github.com/samber/mo"
)

// Phase is the scheduler's position in its state machine.
type Phase int

const (
	// PhaseIdle: no clip playing and no timer armed.
	PhaseIdle Phase = iota
	// PhaseScheduled: a clip is playing and the rotation timer is armed.
	PhaseScheduled
	// PhasePaused: the clip is held.
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScheduled:
		return "scheduled"
	case PhasePaused:
		return "paused"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the playback state owned by a Rotator.
type State struct {
	Current mo.Option[library.Clip]
	// Position is the offset, in seconds, the current clip was started from.
	Position int
	Paused   bool
	Phase    Phase
	// Remaining is the time left before the next rotation, zero when no timer is pending.
	Remaining time.Duration
	// Advances counts clips loaded since Run started.
	Advances int
}

func (s State) String() string {
	clip := "none"
	if c, ok := s.Current.Get(); ok {
		clip = fmt.Sprintf("%s@%ds", c, s.Position)
	}
	return fmt.Sprintf("%s clip=%s next=%s advances=%d", s.Phase, clip, s.Remaining.Round(time.Millisecond), s.Advances)
}
