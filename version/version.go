// Package version carries build metadata injected via ldflags.
package version

var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// GetFullVersion returns the version, with commit and build date
// appended when the build injected them
func GetFullVersion() string {
	v := Version
	if GitCommit != "" {
		v += " (" + GitCommit
		if BuildDate != "" {
			v += ", " + BuildDate
		}
		v += ")"
	}
	return v
}
