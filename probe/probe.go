// Package probe discovers clip durations with an external metadata tool.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
)

const (
	BackendFFProbe    = "ffprobe"
	BackendDiscoverer = "discoverer"
)

var (
	// ErrNoDuration is returned when the tool succeeds but reports no usable duration.
	ErrNoDuration = errors.New("no duration reported")

	// ErrUnknownBackend is returned by New for an unregistered backend name.
	ErrUnknownBackend = errors.New("unknown probe backend")
)

// Prober returns the duration of a media file in seconds.
type Prober interface {
	Discover(ctx context.Context, path string) (float64, error)
}

// runner executes a tool and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

var binaries = map[string]string{
	BackendFFProbe:    "ffprobe",
	BackendDiscoverer: "gst-discoverer-1.0",
}

// Backends lists the registered backend names.
func Backends() []string {
	return []string{BackendFFProbe, BackendDiscoverer}
}

// New returns the prober registered under backend.
func New(backend string) (Prober, error) {
	switch strings.ToLower(backend) {
	case BackendFFProbe:
		return NewFFProbe(), nil
	case BackendDiscoverer:
		return NewDiscoverer(), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
}

// Binary returns the executable a backend shells out to.
func Binary(backend string) (string, bool) {
	bin, ok := binaries[strings.ToLower(backend)]
	return bin, ok
}

// Available reports whether the backend's tool can be found on PATH.
func Available(backend string) (string, error) {
	bin, ok := Binary(backend)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return exec.LookPath(bin)
}

// AvailableBackends filters Backends down to those installed.
func AvailableBackends() []string {
	return lo.Filter(Backends(), func(b string, _ int) bool {
		_, err := Available(b)
		return err == nil
	})
}
