// Package buildconfig exposes metadata injected at link time:
//
//	go build -ldflags "-X github.com/Harshitk-cp/sahai/internal/buildconfig.version=v0.3.0 \
//	  -X github.com/Harshitk-cp/sahai/internal/buildconfig.commit=$(git rev-parse --short HEAD)"
package buildconfig

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version":    version,
		"commit":     commit,
		"go_version": runtime.Version(),
	}
}

// String is the one-line form printed by `sahaictl version`.
func String() string {
	return fmt.Sprintf("sahai %s (%s, %s)", version, commit, runtime.Version())
}

// UserAgent identifies outbound HTTP calls.
func UserAgent() string {
	return "sahai/" + version
}
