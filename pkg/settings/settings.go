// Package settings holds build metadata and the per-invocation settings of
// the dumpx command.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "dumpx"

// ConfigFileName is the configuration file looked up under the user config
// directory, as in $XDG_CONFIG_HOME/dumpx/config.yaml.
const ConfigFileName = "config.yaml"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Input describes where the rendered document comes from.
type Input struct {
	// Path is the file to read. Empty or "-" means standard input.
	Path string
	// Format is the input format name; empty means detect.
	Format string
}

// FromStdin reports whether the input is read from standard input.
func (i Input) FromStdin() bool {
	return i.Path == "" || i.Path == "-"
}

// Run holds the settings for a single execution of the command.
type Run struct {
	MinLogLevel int8
	Input       Input
	// ConfigFile overrides the default configuration file location.
	ConfigFile  string
	Expression  string
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the settings used when no flags are given.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
