// Package misc keeps program identity: name, version and source revision.
package misc

import (
	"runtime/debug"
)

const appName = "cssb"

// Set at link time, e.g. -ldflags "-X cssb/misc.version=1.2.0".
var (
	version = ""
	gitHash = ""
)

// GetAppName returns program name used for logs, reports and help.
func GetAppName() string {
	return appName
}

// GetVersion returns version set at link time falling back to module version
// recorded in the binary.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns source revision set at link time or recorded by the Go
// toolchain from VCS.
func GetGitHash() string {
	if len(gitHash) > 0 {
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
