package app

// Config holds everything a single CLI invocation needs to run one
// build, assembled by internal/cli from flags.
type Config struct {
	ConfigPath string // path to the build.hcl file

	RootCoords string // "group:name:version[:classifier]"

	// Exactly one resolver source must be set.
	ManifestPath    string // static resolver: JSON array of resolver.Manifest
	ResolverBaseURL string // httprepo resolver: base URL
	ArchiveCacheDir string // httprepo resolver: local archive cache dir

	// Overrides for the build configuration file's own fields, applied
	// when non-empty.
	BaseCacheDir string
	TargetDir    string

	WorkerCount int

	LogFormat string // "text" or "json"
	LogLevel  string // "debug", "info", "warn", "error"

	ProgressPort int // 0 disables the live-progress dashboard
	NoColor      bool
}
