package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release of the pokedex service (set during build)
	Version = "0.1.0"

	// GitCommit is the git commit hash (set during build)
	GitCommit = "unknown"

	// BuildTime is when the binary was built (set during build)
	BuildTime = "unknown"
)

// Info contains version information
type Info struct {
	Version     string `json:"version"`
	GitCommit   string `json:"git_commit"`
	ShortCommit string `json:"short_commit"`
	BuildTime   string `json:"build_time"`
	Dirty       bool   `json:"dirty"`
	GoVersion   string `json:"go_version"`
}

// Get returns version information. Values not injected through -ldflags are
// taken from the VCS stamp the toolchain embeds, when present.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}

	info.ShortCommit = info.GitCommit
	if len(info.ShortCommit) > 7 {
		info.ShortCommit = info.ShortCommit[:7]
	}
	return info
}

// String returns a formatted version string
func (i Info) String() string {
	s := fmt.Sprintf("pokedex v%s (commit: %s, built: %s, go: %s)",
		i.Version, i.ShortCommit, i.BuildTime, i.GoVersion)
	if i.Dirty {
		s += " dirty"
	}
	return s
}
