// Package version holds build information, set through ldflags:
//
//	go build -ldflags "-X botlint/internal/version.Version=1.0.0 -X botlint/internal/version.Commit=abc123"
package version

var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Details is the machine-readable form of the build information.
type Details struct {
	Version   string `json:"version" yaml:"version" toml:"version"`
	Commit    string `json:"commit" yaml:"commit" toml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate" toml:"buildDate"`
}

// Get returns the current build information.
func Get() Details {
	return Details{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

// Info returns the version, followed by the short commit when known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns the multi-line form printed by "botlint version".
func Full() string {
	return "botlint " + Version + "\n" +
		"commit: " + Commit + "\n" +
		"built:  " + BuildDate
}
