package rotation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), c: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires every due timer.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.done && !t.at.After(c.now) {
			t.done = true
			t.c <- c.now
		}
	}
}

// Pending returns the timers that have neither fired nor been stopped.
func (c *fakeClock) Pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Filter(c.timers, func(t *fakeTimer, _ int) bool { return !t.done })
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Time
	done  bool
	c     chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

type fakeBackend struct {
	mu      sync.Mutex
	sources []string
	seeks   []float64
	state   player.State
	states  []player.State
	failing map[string]bool
	events  chan player.Event
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failing: make(map[string]bool),
		events:  make(chan player.Event, 16),
	}
}

func (b *fakeBackend) SetSource(uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, uri)
	if b.failing[uri] {
		return errors.New("cannot open")
	}
	return nil
}

func (b *fakeBackend) Seek(seconds float64, _ player.SeekFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seeks = append(b.seeks, seconds)
	return nil
}

func (b *fakeBackend) SetState(state player.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.states = append(b.states, state)
	return nil
}

func (b *fakeBackend) Events() <-chan player.Event {
	return b.events
}

func (b *fakeBackend) Close() error {
	return nil
}

func (b *fakeBackend) fail(clip library.Clip) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[clip.URI()] = true
}

func (b *fakeBackend) State() player.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *fakeBackend) Sources() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sources...)
}

func (b *fakeBackend) StateChanges() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.states)
}

// orderedSelector returns the first library clip that is not avoided, starting at offset 10.
type orderedSelector struct {
	mu    sync.Mutex
	calls int
}

func (s *orderedSelector) SelectAvoiding(_ context.Context, lib *library.Library, avoid func(library.Clip) bool) (library.Clip, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	clip, ok := lo.Find(lib.Clips(), func(c library.Clip) bool { return !avoid(c) })
	if !ok {
		clip = lib.At(0)
	}
	return clip, 10
}

func (s *orderedSelector) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newLibrary(names ...string) *library.Library {
	return lo.Must(library.New("/v", lo.Map(names, func(name string, _ int) library.Clip {
		return library.Clip{Path: "/v/" + name}
	})))
}

// unknownDurations reports every duration as unknown, so clips start at 0.
type unknownDurations struct{}

func (unknownDurations) Lookup(_ context.Context, clip library.Clip) mo.Result[float64] {
	return mo.Err[float64](errors.New("unknown: " + clip.String()))
}
