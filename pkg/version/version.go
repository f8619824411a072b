package version

import (
	"fmt"
	"runtime"
)

// Build information, set by compiler flags (-ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// FullVersion returns the version, commit, build time, and Go toolchain
// version as a single string, suitable for /health and startup logs.
func FullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}

// UserAgent returns the string this mesh's HTTP clients identify as.
func UserAgent() string {
	return fmt.Sprintf("discovery-pipeline/%s", Version)
}
