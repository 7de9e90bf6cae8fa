// Package version reports build information for the pipeline binaries.
package version

import "fmt"

// BuildInfo holds version information about one binary.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders the one-line form printed by --version.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", b.Service, b.Version, b.Commit, b.Date)
}

// Info returns the build information for service. The version, commit, and date
// variables are set at build time using -ldflags.
func Info(service string) BuildInfo {
	// -ldflags "-X 'codecorpus/internal/core/version.version=v0.1.0'
	// -X 'codecorpus/internal/core/version.commit=abcd' -X 'codecorpus/internal/core/version.date=2026-10-01'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
