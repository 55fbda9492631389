//go:build !windows

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipshuffle/clipshuffle/log"
)

// controller is the part of the rotator driven by signals.
type controller interface {
	TogglePause()
	Skip()
}

// watchControls maps SIGUSR1 to pause and SIGUSR2 to skip until ctx is done or the returned func is called.
func watchControls(ctx context.Context, c controller) (stop func()) {
	signals := make(chan os.Signal, 4)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case sig := <-signals:
				log.Debugf("received %s", sig)
				switch sig {
				case syscall.SIGUSR1:
					c.TogglePause()
				case syscall.SIGUSR2:
					c.Skip()
				}
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
