// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date. When no version was injected
// and the binary was installed with go install, the module version is used.
func Info() (string, string, string) {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return v, GitCommit, BuildDate
}

// String formats Info for --version output.
func String() string {
	v, commit, date := Info()
	return fmt.Sprintf("kamera %s (commit: %s, built: %s)", v, commit, date)
}
