// Package cachelayout owns the on-disk shape of the build cache: slot
// paths, result markers, lock files, and step logs. Nothing in this
// package decides WHETHER to run a step — that is internal/scheduler's
// job — only WHERE its evidence lives.
package cachelayout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/buildgraphgo/internal/step"
)

// Marker names the terminal result of a slot. Exactly one marker file,
// named "result.<Marker>", exists in a slot once it has a result.
type Marker string

const (
	Success Marker = "SUCCESS"
	Failed  Marker = "FAILED"
	Aborted Marker = "ABORTED"
	Skipped Marker = "SKIPPED"
)

// HasOutput reports whether m implies an output/ directory exists
// alongside the marker (spec.md §3: "an output/ directory exists iff
// the marker is Success or Aborted").
func (m Marker) HasOutput() bool {
	return m == Success || m == Aborted
}

const (
	lockFileName = "lock"
	logFileName  = "log.txt"
	outputDirName = "output"
)

// Slot is the on-disk directory for one (artifact, step) pair:
// {base}/{coords-sanitized}-{hash-hex}/{step-directory-name}/.
type Slot struct {
	path string
}

// SlotFor returns the Slot for the given sanitized coordinate key, content
// hash, and step.
func SlotFor(baseCacheDir, sanitizedCoordsKey, hashHex string, k step.Kind) Slot {
	return Slot{path: filepath.Join(baseCacheDir, sanitizedCoordsKey+"-"+hashHex, k.DirectoryName())}
}

// NamedSlot returns a Slot for a cache artifact that sits alongside the
// eight pipeline steps but is not itself one of them — currently only
// the Shade transform's "shade-output", computed for every artifact
// right after its CompileGwtIncompatibleStripped step and consulted by
// classpath assembly (spec.md §4.4's classpath assembly rule).
func NamedSlot(baseCacheDir, sanitizedCoordsKey, hashHex, name string) Slot {
	return Slot{path: filepath.Join(baseCacheDir, sanitizedCoordsKey+"-"+hashHex, name)}
}

// ShadeOutputDirName is the directory name NamedSlot uses for the Shade
// transform's output.
const ShadeOutputDirName = "shade-output"

// Path returns the slot's directory path.
func (s Slot) Path() string { return s.path }

// OutputDir returns the slot's output/ payload directory.
func (s Slot) OutputDir() string { return filepath.Join(s.path, outputDirName) }

// LogPath returns the slot's log.txt path.
func (s Slot) LogPath() string { return filepath.Join(s.path, logFileName) }

func (s Slot) lockPath() string { return filepath.Join(s.path, lockFileName) }

func (s Slot) markerPath(m Marker) string {
	return filepath.Join(s.path, "result."+string(m))
}

// ReadMarker inspects the slot for an existing result marker. ok is
// false if no marker is present yet (the slot has never completed, or
// has never even been created).
func (s Slot) ReadMarker() (m Marker, ok bool, err error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rest, found := strings.CutPrefix(e.Name(), "result.")
		if !found {
			continue
		}
		return Marker(rest), true, nil
	}
	return "", false, nil
}

// WriteMarker creates the slot directory if absent and writes a
// zero-byte result.<m> file, removing any stale marker of a different
// value first. A Failed slot is rewritten with each re-attempt, per
// spec.md §5 item 2 ("If Failed, re-run").
func (s Slot) WriteMarker(m Marker) error {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return err
	}
	for _, other := range []Marker{Success, Failed, Aborted, Skipped} {
		if other == m {
			continue
		}
		_ = os.Remove(s.markerPath(other))
	}
	f, err := os.Create(s.markerPath(m))
	if err != nil {
		return err
	}
	return f.Close()
}

// AcquireLock attempts to become the single writer for this slot. It
// creates the lock file exclusively (O_EXCL): ok is false, with no
// error, if another actor already holds it. Callers must call Release
// when done, including on failure paths.
func (s Slot) AcquireLock() (ok bool, err error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, f.Close()
}

// Release drops this slot's lock file. Releasing a lock that was never
// acquired is not an error — it simplifies defer-based cleanup.
func (s Slot) Release() error {
	err := os.Remove(s.lockPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// WriteLog writes lines, newline-joined, to the slot's log.txt,
// creating the slot directory first if necessary.
func (s Slot) WriteLog(lines []string) error {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return err
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	return os.WriteFile(s.LogPath(), []byte(content), 0o644)
}

// WriteFallbackLog handles the special case documented in spec.md §7:
// a failure during the Hash step, before the slot directory necessarily
// exists. It writes a timestamped file directly under baseCacheDir and
// returns its path for the caller to report to the user.
func WriteFallbackLog(baseCacheDir, coordsDisplay string, lines []string, now time.Time) (string, error) {
	if err := os.MkdirAll(baseCacheDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s", coordsDisplay, now.Format("2006-01-02-15-04-05"))
	path := filepath.Join(baseCacheDir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
