//go:build !windows

package cmd

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type countingController struct {
	pauses atomic.Int64
	skips  atomic.Int64
}

func (c *countingController) TogglePause() { c.pauses.Add(1) }
func (c *countingController) Skip()        { c.skips.Add(1) }

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWatchControls(t *testing.T) {
	Convey("Given signal controls", t, func() {
		c := &countingController{}
		stop := watchControls(context.Background(), c)
		Reset(stop)

		Convey("SIGUSR1 toggles pause", func() {
			So(syscall.Kill(syscall.Getpid(), syscall.SIGUSR1), ShouldBeNil)
			So(eventually(func() bool { return c.pauses.Load() == 1 }), ShouldBeTrue)
		})

		Convey("SIGUSR2 skips", func() {
			So(syscall.Kill(syscall.Getpid(), syscall.SIGUSR2), ShouldBeNil)
			So(eventually(func() bool { return c.skips.Load() == 1 }), ShouldBeTrue)
		})
	})
}
