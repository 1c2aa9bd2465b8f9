// Package cli parses command-line arguments into an app.Config, the way
// the teacher's own internal/cli does for its grid-running CLI.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/vk/buildgraphgo/internal/app"
)

// ExitError is returned by Parse when argument parsing itself should end
// the process with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Parse processes args into an app.Config. shouldExit is true when
// Parse already printed everything the user needs (help text, usage)
// and the caller should exit 0 without running a build.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("buildgraphgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
buildgraphgo - a multi-stage artifact build orchestrator.

Usage:
  buildgraphgo [options] ROOT_COORDS

Arguments:
  ROOT_COORDS
    The root artifact to build, as "group:name:version[:classifier]".

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "build.hcl", "Path to the build configuration file.")
	manifestFlag := flagSet.String("manifest", "", "Path to a static JSON manifest file (mutually exclusive with -resolver-url).")
	resolverURLFlag := flagSet.String("resolver-url", "", "Base URL of a remote artifact repository (mutually exclusive with -manifest).")
	archiveCacheFlag := flagSet.String("archive-cache", "", "Local directory for resolver-fetched archives.")
	baseCacheFlag := flagSet.String("cache-dir", "", "Overrides the build configuration's base_cache_dir.")
	targetDirFlag := flagSet.String("target-dir", "", "Overrides the build configuration's target_dir.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent (artifact, step) tasks.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	progressPortFlag := flagSet.Int("progress-port", 0, "Port for the live-progress WebSocket dashboard. 0 disables it.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colored terminal output.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	rootCoords := flagSet.Arg(0)

	if *manifestFlag == "" && *resolverURLFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "one of -manifest or -resolver-url is required"}
	}
	if *manifestFlag != "" && *resolverURLFlag != "" {
		return nil, false, &ExitError{Code: 2, Message: "-manifest and -resolver-url are mutually exclusive"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *noColorFlag {
		color.Disable()
	}

	return &app.Config{
		ConfigPath:      *configFlag,
		RootCoords:      rootCoords,
		ManifestPath:    *manifestFlag,
		ResolverBaseURL: *resolverURLFlag,
		ArchiveCacheDir: *archiveCacheFlag,
		BaseCacheDir:    *baseCacheFlag,
		TargetDir:       *targetDirFlag,
		WorkerCount:     *workersFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		ProgressPort:    *progressPortFlag,
		NoColor:         *noColorFlag,
	}, false, nil
}
