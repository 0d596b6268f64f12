// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// version.go — the current document format version, plus build-time
// metadata injected via -ldflags by the Makefile.

package gridio

// FormatVersion is the schema version stamped on every document created by
// NewDocument. The decoder migrates documents carrying an older tag through
// the migration chain (migrate.go) on load.
const FormatVersion = "2.4.0"

// Build-time variables injected via -ldflags by the Makefile.
// Defaults represent an unversioned local development build.
//
//	BuildDate format : YYYY.MM.DD-HHMM  (24-hour clock)
//	BuildEnv  values : dev | qa | prod
var (
	// BuildDate is the date and time the binary was built.
	// Set by: -ldflags "-X 'github.com/AndrewDonelson/gridio.BuildDate=2026.02.28-1750'"
	BuildDate = "0000.00.00-0000"

	// BuildEnv is the target environment for this build.
	// Set by: -ldflags "-X 'github.com/AndrewDonelson/gridio.BuildEnv=dev'"
	BuildEnv = "dev"
)

// Version returns the full build version string in the form
// "YYYY.MM.DD-HHMM-env", e.g. "2026.02.28-1750-dev".
func Version() string {
	return BuildDate + "-" + BuildEnv
}
