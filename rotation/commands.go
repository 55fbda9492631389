package rotation

import (
	"context"

	"github.com/clipshuffle/clipshuffle/log"
)

const commandBuffer = 8

type commandKind int

const (
	cmdTogglePause commandKind = iota
	cmdSkip
	cmdStatus
)

type command struct {
	kind  commandKind
	reply chan State
}

// TogglePause asks the running loop to pause or resume. It never blocks; a request that
// does not fit in the queue is dropped.
func (r *Rotator) TogglePause() {
	r.enqueue(command{kind: cmdTogglePause})
}

// Skip asks the running loop to advance now. Skips while paused are ignored.
func (r *Rotator) Skip() {
	r.enqueue(command{kind: cmdSkip})
}

// Status returns a snapshot of the playback state from the running loop.
func (r *Rotator) Status(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case r.commands <- command{kind: cmdStatus, reply: reply}:
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (r *Rotator) enqueue(cmd command) {
	select {
	case r.commands <- cmd:
	default:
		log.Warnf("rotation busy, dropping command %d", cmd.kind)
	}
}

func (r *Rotator) handleCommand(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdTogglePause:
		r.togglePause()
	case cmdSkip:
		log.Infof("skip requested")
		r.advance(ctx)
	case cmdStatus:
		cmd.reply <- r.snapshot()
	}
}
