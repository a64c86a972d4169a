// Package version exposes build metadata stamped in via -ldflags.
package version

import "runtime"

// Info describes build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

var current = Info{Version: "dev", GoVersion: runtime.Version()}

// Set records the build metadata. Called once from main before any reads.
func Set(v Info) {
	if v.Version == "" {
		v.Version = "dev"
	}
	if v.GoVersion == "" {
		v.GoVersion = runtime.Version()
	}
	current = v
}

// Current returns the configured build metadata.
func Current() Info {
	return current
}
