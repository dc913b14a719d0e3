package cmd

import (
	"runtime/debug"
)

type (
	// BuildInfo is the vcs build info of the binary
	BuildInfo struct {
		ModVersion string
		VCSRev     string
		VCSTime    string
	}
)

func ReadVCSBuildInfo() BuildInfo {
	buildinfo := BuildInfo{
		ModVersion: "(devel)",
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildinfo
	}
	if info.Main.Version != "" {
		buildinfo.ModVersion = info.Main.Version
	}
	for _, i := range info.Settings {
		switch i.Key {
		case "vcs.revision":
			buildinfo.VCSRev = i.Value
		case "vcs.time":
			buildinfo.VCSTime = i.Value
		}
	}
	return buildinfo
}
