package app

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/GraceHermine/GenerateurDocument/internal/app.Version=1.0.0"
// Builds without ldflags fall back to the VCS stamp recorded by the Go
// toolchain.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns the version string reported by /health and the
// startup log.
func BuildVersion() string {
	info, _ := debug.ReadBuildInfo()
	return formatVersion(info)
}

func formatVersion(info *debug.BuildInfo) string {
	version, commit, built := Version, Commit, BuildTime
	if info != nil {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		var modified bool
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "unknown" && s.Value != "" {
					commit = s.Value[:min(12, len(s.Value))]
				}
			case "vcs.time":
				if built == "unknown" && s.Value != "" {
					built = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if modified && commit != Commit {
			commit += "-dirty"
		}
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}
