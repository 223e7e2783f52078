// Package app wires configuration, calculators and front ends into the
// cfcalc executable. It dispatches between the one-shot command line, the
// REPL and the HTTP server, and reports build information.
package app

import (
	"fmt"
	"io"
	"runtime"
	"slices"
)

// Build information, set with -ldflags:
//
//	go build -ldflags="-X github.com/agbru/cfcalc/internal/app.Version=v0.3.0 -X github.com/agbru/cfcalc/internal/app.Commit=abc123 -X github.com/agbru/cfcalc/internal/app.BuildDate=2025-01-01T00:00:00Z" ./cmd/cfcalc
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionFlags = []string{"--version", "-version", "-V"}

// HasVersionFlag reports whether args request the version, in any position.
func HasVersionFlag(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return slices.Contains(versionFlags, arg)
	})
}

// PrintVersion writes the build information to out.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "cfcalc %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
}

// VersionData is the machine-readable form of the build information.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the current build information.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
