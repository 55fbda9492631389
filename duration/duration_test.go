package duration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeProber struct {
	calls     atomic.Int64
	durations map[string]float64
	delay     time.Duration
}

func (f *fakeProber) Discover(ctx context.Context, path string) (float64, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	seconds, ok := f.durations[path]
	if !ok {
		return 0, errors.New("unreadable")
	}
	return seconds, nil
}

func clip(path string) library.Clip {
	return library.Clip{Path: path}
}

func TestLookup(t *testing.T) {
	Convey("Given a cache over a fake prober", t, func() {
		prober := &fakeProber{durations: map[string]float64{"/v/a.mp4": 30, "/v/b.mp4": 5}}
		cache := New(prober, time.Second)
		ctx := context.Background()

		Convey("A duration is probed once and then served from memory", func() {
			So(cache.Lookup(ctx, clip("/v/a.mp4")).MustGet(), ShouldEqual, 30)
			So(cache.Lookup(ctx, clip("/v/a.mp4")).MustGet(), ShouldEqual, 30)
			So(cache.Duration(ctx, clip("/v/a.mp4")), ShouldEqual, 30)
			So(prober.calls.Load(), ShouldEqual, 1)
			So(cache.Known(clip("/v/a.mp4")), ShouldBeTrue)
		})

		Convey("A failure is an error result, 0 seconds, and is not probed again", func() {
			result := cache.Lookup(ctx, clip("/v/broken.mp4"))
			So(result.IsError(), ShouldBeTrue)
			So(errors.Is(result.Error(), ErrUnknown), ShouldBeTrue)
			So(cache.Duration(ctx, clip("/v/broken.mp4")), ShouldEqual, 0)
			So(prober.calls.Load(), ShouldEqual, 1)
			So(cache.Len(), ShouldEqual, 1)
		})

		Convey("Concurrent lookups of one clip share a single probe", func() {
			prober.delay = 50 * time.Millisecond
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					cache.Lookup(ctx, clip("/v/b.mp4"))
				}()
			}
			wg.Wait()
			So(prober.calls.Load(), ShouldEqual, 1)
			So(cache.Duration(ctx, clip("/v/b.mp4")), ShouldEqual, 5)
		})

		Convey("A cancelled lookup is not remembered", func() {
			prober.delay = time.Second
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			So(cache.Lookup(cancelled, clip("/v/a.mp4")).IsError(), ShouldBeTrue)
			So(cache.Known(clip("/v/a.mp4")), ShouldBeFalse)
		})

		Convey("The probe timeout bounds slow probes", func() {
			prober.delay = time.Second
			fast := New(prober, 20*time.Millisecond)
			So(fast.Lookup(ctx, clip("/v/a.mp4")).IsError(), ShouldBeTrue)
			So(fast.Known(clip("/v/a.mp4")), ShouldBeTrue)
		})
	})
}

func TestPrewarm(t *testing.T) {
	Convey("Given a library of clips", t, func() {
		prober := &fakeProber{durations: map[string]float64{"/v/a.mp4": 30, "/v/b.mp4": 5}}
		cache := New(prober, time.Second)
		clips := []library.Clip{clip("/v/a.mp4"), clip("/v/b.mp4"), clip("/v/c.mp4")}

		Convey("Prewarm probes every clip once and counts failures", func() {
			var (
				mu            sync.Mutex
				last          int
				reportedTotal int
			)
			failed := cache.Prewarm(context.Background(), clips, 4, func(done, total int) {
				mu.Lock()
				defer mu.Unlock()
				reportedTotal = total
				last = max(last, done)
			})

			So(failed, ShouldEqual, 1)
			So(last, ShouldEqual, 3)
			So(reportedTotal, ShouldEqual, 3)
			So(cache.Len(), ShouldEqual, 3)
			So(prober.calls.Load(), ShouldEqual, 3)

			cache.Prewarm(context.Background(), clips, 2, nil)
			So(prober.calls.Load(), ShouldEqual, 3)
		})

		Convey("A cancelled prewarm stops early", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			cache.Prewarm(ctx, clips, 0, nil)
			So(cache.Len(), ShouldEqual, 0)
			So(prober.calls.Load(), ShouldEqual, 0)
		})
	})
}

func TestPersist(t *testing.T) {
	Convey("Given persisted durations on disk", t, func() {
		filesystem.SetMemMapFs()
		lo.Must0(filesystem.API().MkdirAll("/v", 0o755))
		lo.Must0(filesystem.API().WriteFile("/v/a.mp4", []byte("video"), 0o644))
		const path = "/cache/durations.json"

		first := New(&fakeProber{durations: map[string]float64{"/v/a.mp4": 42}}, time.Second)
		So(first.Persist(path), ShouldBeNil)
		So(first.Duration(context.Background(), clip("/v/a.mp4")), ShouldEqual, 42)
		So(first.Stored(), ShouldEqual, 1)

		Convey("A new cache restores them without probing", func() {
			prober := &fakeProber{}
			second := New(prober, time.Second)
			So(second.Persist(path), ShouldBeNil)

			So(second.Duration(context.Background(), clip("/v/a.mp4")), ShouldEqual, 42)
			So(prober.calls.Load(), ShouldEqual, 0)
		})

		Convey("A modified file is probed again", func() {
			lo.Must0(filesystem.API().WriteFile("/v/a.mp4", []byte("a longer video"), 0o644))

			prober := &fakeProber{durations: map[string]float64{"/v/a.mp4": 50}}
			second := New(prober, time.Second)
			So(second.Persist(path), ShouldBeNil)

			So(second.Duration(context.Background(), clip("/v/a.mp4")), ShouldEqual, 50)
			So(prober.calls.Load(), ShouldEqual, 1)
		})

		Convey("Failures are never persisted", func() {
			_ = first.Lookup(context.Background(), clip("/v/missing.mp4"))
			So(first.Stored(), ShouldEqual, 1)
		})
	})
}

func TestNilStore(t *testing.T) {
	Convey("Without persistence the store is inert", t, func() {
		var s *store
		_, ok := s.lookup(clip("/v/a.mp4"))
		So(ok, ShouldBeFalse)
		So(func() { s.save(clip("/v/a.mp4"), 1) }, ShouldNotPanic)
		So(New(&fakeProber{}, 0).Stored(), ShouldEqual, 0)
	})
}
