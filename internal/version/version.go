// Package version reports the lessc build. The variables are set with
// -ldflags "-X github.com/benbjohnson/less/internal/version.Version=...".
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
	Dirty     = ""
)

// Info describes a build.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Dirty     bool
}

// Get returns the build information. When the binary was not built with
// ldflags, the module version and VCS settings recorded by the Go toolchain
// are used instead.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		Dirty:     Dirty == "true" || Dirty == "dirty",
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(&info, bi)
	}
	return info
}

func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				info.Dirty = true
			}
		}
	}
}

// String returns the version followed by the short commit, if known.
func (i Info) String() string {
	s := i.Version
	if commit := shortCommit(i.Commit); commit != "" && !strings.HasSuffix(s, commit) {
		s = fmt.Sprintf("%s-%s", s, commit)
	}
	if i.Dirty {
		s += "-dirty"
	}
	if i.BuildTime != "" {
		s += " (built " + i.BuildTime + ")"
	}
	return s
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
