// Package version holds the build version of pentest-hub.
package version

import "runtime/debug"

// Version and CommitSHA can be set via:
// -ldflags="-X 'github.com/pentesthub/pentest-hub/pkg/version.Version=$TAG' -X 'github.com/pentesthub/pentest-hub/pkg/version.CommitSHA=$SHA'"
var (
	Version   string
	CommitSHA string
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "" {
		Version = info.Main.Version
	}
	if CommitSHA == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				CommitSHA = s.Value
			}
		}
	}
}
