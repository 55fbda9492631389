// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// Library scans, log files and the duration store all go through API(), so tests can
// swap in an in-memory backend.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// IsMem reports whether the in-memory backend is active.
func IsMem() bool {
	_, ok := backend.Fs.(*afero.MemMapFs)
	return ok
}
