// Package version holds build metadata. The variables are set at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/pegkit/pkg/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = unknown
	// Date is the build time.
	Date = unknown
)

// InitBinaryVersion fills Commit and Date from the embedded VCS build info
// when they were not set at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = s.Value
			}
		}
	}
}

// String formats the build metadata on one line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
