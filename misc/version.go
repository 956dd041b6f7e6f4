// Package misc keeps build stamps of the program.
package misc

import (
	"runtime/debug"
)

const appName = "twbkit"

// set with -ldflags "-X twbkit/misc.version=... -X twbkit/misc.gitHash=..."
var (
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

// GetVersion returns stamped version, or module version when program was
// installed with "go install".
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns stamped commit hash, falls back to vcs information
// recorded by the toolchain.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
