// Package library discovers the clips clipshuffle rotates through.
package library

import (
	"net/url"
	"path/filepath"

	"github.com/clipshuffle/clipshuffle/util"
)

// Clip is one playable video file, identified by its absolute, cleaned path.
type Clip struct {
	Path string `json:"path" jsonschema:"description=Absolute path of the video file."`
}

// NewClip returns a clip for path, resolving it against the working directory when relative.
func NewClip(path string) Clip {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Clip{Path: filepath.Clean(path)}
}

// ID returns the identity used for equality and duration memoization.
func (c Clip) ID() string {
	return c.Path
}

// URI returns the file URI handed to the playback backend.
func (c Clip) URI() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(c.Path)}).String()
}

// Name returns the file name without directories or extension.
func (c Clip) Name() string {
	return util.FileStem(c.Path)
}

// String implements fmt.Stringer.
func (c Clip) String() string {
	return filepath.Base(c.Path)
}
