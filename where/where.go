// Package where resolves the filesystem paths clipshuffle reads and writes.
package where

import (
	"os"
	"path/filepath"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "CLIPSHUFFLE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honoring CLIPSHUFFLE_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the fallback log directory used when the library root is not writable.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Durations resolves the file backing the persisted duration store.
func Durations() string {
	return filepath.Join(Cache(), "durations.json")
}

// LibraryLog resolves the log file that lives next to a clip library.
func LibraryLog(root string) string {
	return filepath.Join(root, constant.LogFile)
}

// Temp resolves a scratch directory, used for the mpv IPC socket.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
