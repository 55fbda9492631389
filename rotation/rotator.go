// Package rotation schedules clip advancement and reacts to playback events.
//
// All state is owned by the goroutine running Rotator.Run. Other goroutines
// talk to it through TogglePause, Skip and Status.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/clipshuffle/clipshuffle/player"
	"github.com/samber/mo"
)

var (
	// ErrBackendGone is returned by Run when the backend event stream closes.
	ErrBackendGone = errors.New("playback backend went away")

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("rotator is already running")
)

// Selector picks the next clip and its start offset, staying away from the clips avoid
// reports whenever the library allows it.
type Selector interface {
	SelectAvoiding(ctx context.Context, lib *library.Library, avoid func(library.Clip) bool) (library.Clip, int)
}

// Options tune the scheduler.
type Options struct {
	// Interval between forced clip switches.
	Interval time.Duration
	// FreezeOnPause suspends the countdown while paused and resumes it with the time that was left.
	// Otherwise the timer keeps running and ticks while paused only re-arm it.
	FreezeOnPause bool
	// Clock defaults to the system clock.
	Clock Clock
}

// Rotator plays random clips from a library, switching on a fixed interval.
type Rotator struct {
	lib      *library.Library
	selector Selector
	backend  player.Backend
	clock    Clock
	opts     Options

	commands chan command
	running  bool

	state     State
	timer     Timer
	deadline  time.Time
	remaining time.Duration

	// consecutive error events without a successful load in between
	errorStreak int
}

// New returns an idle rotator.
func New(lib *library.Library, selector Selector, backend player.Backend, opts Options) *Rotator {
	if opts.Interval <= 0 {
		opts.Interval = constant.RotationInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	return &Rotator{
		lib:      lib,
		selector: selector,
		backend:  backend,
		clock:    opts.Clock,
		opts:     opts,
		commands: make(chan command, commandBuffer),
		state:    State{Current: mo.None[library.Clip](), Phase: PhaseIdle},
	}
}

// Run plays the first clip and then serves backend events, timer ticks and commands
// until ctx is done or the backend goes away. Callers must defer Cleanup.
func (r *Rotator) Run(ctx context.Context) error {
	if r.running {
		return ErrAlreadyRunning
	}
	r.running = true
	defer func() { r.running = false }()

	log.Infof("rotating %d clips from %s every %s", r.lib.Len(), r.lib.Root(), r.opts.Interval)

	r.advance(ctx)
	if !r.state.Paused {
		if err := r.backend.SetState(player.Playing); err != nil {
			log.Errorf("start playback: %v", err)
		}
	}

	events := r.backend.Events()
	for {
		select {
		case <-ctx.Done():
			log.Infof("rotation interrupted: %v", ctx.Err())
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return ErrBackendGone
			}
			r.handleEvent(ctx, event)
		case <-r.timerC():
			r.tick(ctx)
		case cmd := <-r.commands:
			r.handleCommand(ctx, cmd)
		}
	}
}

// Cleanup cancels any pending timer and stops the backend. It is safe to call repeatedly
// and from any phase, but not concurrently with Run.
func (r *Rotator) Cleanup() {
	r.cancelTimer()
	r.remaining = 0

	if err := r.backend.SetState(player.Stopped); err != nil {
		log.Warnf("stop backend: %v", err)
	}

	if r.state.Phase != PhaseIdle {
		log.Infof("rotation stopped after %d advances", r.state.Advances)
	}
	r.state.Phase = PhaseIdle
	r.state.Paused = false
	r.state.Current = mo.None[library.Clip]()
}

// advance switches to a new clip and re-arms the rotation timer. While paused it changes
// nothing. It reports whether the rotator is in a state where rotation can continue,
// which is always true: failures are logged and absorbed.
func (r *Rotator) advance(ctx context.Context) bool {
	if r.state.Paused {
		log.Debugf("advance ignored while paused")
		return true
	}

	r.cancelTimer()

	previous, playing := r.state.Current.Get()
	failed := make(map[string]struct{})
	avoid := func(c library.Clip) bool {
		if _, ok := failed[c.ID()]; ok {
			return true
		}
		return playing && c.ID() == previous.ID()
	}

	attempts := r.lib.Len()
	for attempt := 1; attempt <= attempts; attempt++ {
		clip, offset := r.selector.SelectAvoiding(ctx, r.lib, avoid)
		err := r.loadAndPlay(clip, offset)
		if err == nil {
			r.state.Advances++
			break
		}

		log.Errorf("skipping %s (attempt %d of %d): %v", clip, attempt, attempts, err)
		failed[clip.ID()] = struct{}{}
		if ctx.Err() != nil {
			break
		}
	}

	r.armTimer(r.opts.Interval)
	r.state.Phase = PhaseScheduled
	return true
}

// loadAndPlay points the backend at clip, seeks to offset and resumes playback unless paused.
func (r *Rotator) loadAndPlay(clip library.Clip, offset int) error {
	if err := r.backend.SetSource(clip.URI()); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	r.state.Current = mo.Some(clip)
	r.state.Position = offset

	if err := r.backend.Seek(float64(offset), player.SeekFlush|player.SeekAccurate); err != nil {
		return fmt.Errorf("seek to %ds: %w", offset, err)
	}

	target := player.Playing
	if r.state.Paused {
		target = player.Paused
	}
	if err := r.backend.SetState(target); err != nil {
		return fmt.Errorf("set %s: %w", target, err)
	}

	log.Infof("playing %s from %ds", clip, offset)
	return nil
}

// handleEvent reacts to a backend notification.
func (r *Rotator) handleEvent(ctx context.Context, event player.Event) {
	if r.stale(event) {
		log.Debugf("ignoring %s for replaced %s", event.Kind, event.Source)
		return
	}

	switch event.Kind {
	case player.EventEndOfStream:
		log.Debugf("end of stream: %s", r.currentName())
		r.advance(ctx)

	case player.EventError:
		r.errorStreak++
		log.Errorf("playback error on %s: %s (%s)", r.currentName(), event.Message, event.Debug)

		if r.errorStreak > r.lib.Len() {
			// every clip failed in a row; let the timer pace the retries
			log.Warnf("%d consecutive playback errors, waiting for the next rotation", r.errorStreak)
			return
		}
		r.advance(ctx)

	case player.EventLoaded:
		r.errorStreak = 0

	case player.EventPause:
		if event.Paused != r.state.Paused {
			log.Infof("pause toggled in player window")
			r.setPaused(event.Paused, false)
		}
	}
}

// stale reports whether event was raised for a clip that is no longer current.
func (r *Rotator) stale(event player.Event) bool {
	if event.Source == "" {
		return false
	}
	clip, ok := r.state.Current.Get()
	return !ok || clip.URI() != event.Source
}

// togglePause flips the paused flag and the backend state.
func (r *Rotator) togglePause() {
	r.setPaused(!r.state.Paused, true)
}

func (r *Rotator) setPaused(paused, syncBackend bool) {
	if r.state.Phase == PhaseIdle {
		log.Debugf("pause ignored while idle")
		return
	}

	r.state.Paused = paused

	if syncBackend {
		target := player.Playing
		if paused {
			target = player.Paused
		}
		if err := r.backend.SetState(target); err != nil {
			log.Errorf("set %s: %v", target, err)
		}
	}

	if paused {
		if r.opts.FreezeOnPause && r.timer != nil {
			r.remaining = max(r.deadline.Sub(r.clock.Now()), 0)
			r.cancelTimer()
		}
		r.state.Phase = PhasePaused
		log.Infof("paused on %s", r.currentName())
		return
	}

	if r.opts.FreezeOnPause && r.timer == nil {
		r.armTimer(r.remaining)
		r.remaining = 0
	}
	r.state.Phase = PhaseScheduled
	log.Infof("resumed %s", r.currentName())
}

// tick handles the rotation timer firing.
func (r *Rotator) tick(ctx context.Context) {
	r.timer = nil

	if r.state.Paused {
		log.Debugf("rotation tick while paused on %s", r.currentName())
		if !r.opts.FreezeOnPause {
			r.armTimer(r.opts.Interval)
		}
		return
	}

	r.advance(ctx)
}

func (r *Rotator) armTimer(d time.Duration) {
	r.cancelTimer()
	r.timer = r.clock.NewTimer(d)
	r.deadline = r.clock.Now().Add(d)
}

func (r *Rotator) cancelTimer() {
	if r.timer == nil {
		return
	}
	r.timer.Stop()
	r.timer = nil
}

// timerC returns the pending timer's channel, or nil so the select never picks it.
func (r *Rotator) timerC() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C()
}

func (r *Rotator) currentName() string {
	if clip, ok := r.state.Current.Get(); ok {
		return clip.String()
	}
	return "nothing"
}

// snapshot returns a copy of the state with the remaining time filled in.
func (r *Rotator) snapshot() State {
	s := r.state
	switch {
	case r.timer != nil:
		s.Remaining = max(r.deadline.Sub(r.clock.Now()), 0)
	case r.state.Paused:
		s.Remaining = r.remaining
	}
	return s
}
