package duration

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
)

// Progress is reported after each prewarmed clip.
type Progress func(done, total int)

// Prewarm looks up every clip with the given number of workers and returns how many failed.
// It stops early when ctx is cancelled.
func (c *Cache) Prewarm(ctx context.Context, clips []library.Clip, workers int, progress Progress) (failed int) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan library.Clip)
	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		failures atomic.Int64
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for clip := range jobs {
				if c.Lookup(ctx, clip).IsError() {
					failures.Add(1)
				}
				n := done.Add(1)
				if progress != nil {
					progress(int(n), len(clips))
				}
			}
		}()
	}

feed:
	for _, clip := range clips {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- clip:
		}
	}
	close(jobs)
	wg.Wait()

	log.Infof("prewarmed %d of %d durations, %d failed", done.Load(), len(clips), failures.Load())
	return int(failures.Load())
}
