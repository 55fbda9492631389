//go:build windows

package cmd

import "context"

type controller interface {
	TogglePause()
	Skip()
}

// watchControls is a no-op: Windows has no user signals.
func watchControls(context.Context, controller) (stop func()) {
	return func() {}
}
