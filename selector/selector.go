// Package selector picks the next clip and the offset to start it from.
package selector

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/samber/mo"
)

// maxResamples bounds the rejection loop before falling back to library order.
const maxResamples = 32

// DurationSource resolves clip durations. Implemented by *duration.Cache.
type DurationSource interface {
	Lookup(ctx context.Context, clip library.Clip) mo.Result[float64]
}

// Selector is not safe for concurrent use; the rotation loop owns it.
type Selector struct {
	durations DurationSource
	rng       *rand.Rand
	margin    int
}

// New returns a selector. A zero seed draws one from the runtime's random source.
// margin is the playback, in whole seconds, every random offset must leave.
func New(durations DurationSource, seed uint64, margin int) *Selector {
	if seed == 0 {
		seed = rand.Uint64()
	}
	if margin < 0 {
		margin = 0
	}

	return &Selector{
		durations: durations,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		margin:    margin,
	}
}

// Margin returns the safety margin in seconds.
func (s *Selector) Margin() int {
	return s.margin
}

// SelectNext picks a clip uniformly at random, different from excluding whenever lib has
// more than one clip, and an offset in [0, floor(duration) - margin].
func (s *Selector) SelectNext(ctx context.Context, lib *library.Library, excluding mo.Option[library.Clip]) (library.Clip, int) {
	previous, ok := excluding.Get()
	return s.SelectAvoiding(ctx, lib, func(c library.Clip) bool {
		return ok && c.ID() == previous.ID()
	})
}

// SelectAvoiding is SelectNext with an arbitrary set of clips to stay away from. When
// every clip is avoided, any clip may be returned.
func (s *Selector) SelectAvoiding(ctx context.Context, lib *library.Library, avoid func(library.Clip) bool) (library.Clip, int) {
	clip := s.pick(lib, avoid)
	return clip, s.Offset(ctx, clip)
}

func (s *Selector) pick(lib *library.Library, avoid func(library.Clip) bool) library.Clip {
	n := lib.Len()
	if n == 1 {
		return lib.At(0)
	}

	var idx int
	for i := 0; i < maxResamples; i++ {
		idx = s.rng.IntN(n)
		if avoid == nil || !avoid(lib.At(idx)) {
			return lib.At(idx)
		}
	}

	// unlucky streak: walk on in library order
	for step := 1; step < n; step++ {
		if clip := lib.At((idx + step) % n); !avoid(clip) {
			return clip
		}
	}
	return lib.At(idx)
}

// Offset returns a random start offset for clip, or 0 when its duration is unknown or
// not longer than the margin.
func (s *Selector) Offset(ctx context.Context, clip library.Clip) int {
	seconds, err := s.durations.Lookup(ctx, clip).Get()
	if err != nil {
		log.Debugf("duration unknown for %s, starting at 0: %v", clip, err)
		return 0
	}

	whole := int(math.Floor(seconds))
	if whole <= s.margin {
		return 0
	}

	return s.rng.IntN(whole - s.margin + 1)
}
