// Package version reports how the tagrss binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const develVersion = "(devel)"

// Set via ldflags, e.g.
// -X github.com/macropower/tagrss/pkg/version.Version=v0.3.0.
var (
	Version   string
	Branch    string
	BuildUser string
	BuildDate string
)

// Info describes a tagrss build.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Branch    string `json:"branch,omitempty"`
	BuildUser string `json:"buildUser,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get returns the build information of the running binary.
func Get() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		bi = nil
	}

	return FromBuildInfo(bi)
}

// FromBuildInfo combines the ldflags values with bi, which may be nil.
// Values missing from ldflags fall back to the module version and the VCS
// stamp recorded by the go tool.
func FromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		Branch:    Branch,
		BuildUser: BuildUser,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi != nil {
		info.GoVersion = bi.GoVersion

		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Revision = s.Value[:min(len(s.Value), 7)]
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}

		if info.Version == "" && bi.Main.Version != develVersion {
			info.Version = bi.Main.Version
		}
	}

	if info.Version == "" {
		info.Version = info.Revision
		if info.Modified {
			info.Version += "-dirty"
		}
	}

	return info
}

// String formats info on one line, e.g. "v0.3.0 (1a2b3c4, go1.25.0 linux/amd64)".
func (i Info) String() string {
	details := []string{i.Revision}
	if i.Modified {
		details[0] += "-dirty"
	}

	details = append(details, i.GoVersion+" "+i.Platform)

	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(details, ", "))
}
