package constant

// Platform identifiers for runtime.GOOS comparisons, used when suggesting how to install missing tools.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	FreeBSD = "freebsd"
)
