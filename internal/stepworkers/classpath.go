package stepworkers

import (
	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/pathops"
	"github.com/vk/buildgraphgo/internal/step"
)

// classpathEntry resolves dep's best available classpath contribution
// per spec.md §4.4's shared rule: prefer shade-output if present, else
// the compile-gwt-incompatible-stripped output, else the raw artifact
// file (ignored/JRE dependencies that were never compiled at all).
func classpathEntry(dep *artifact.Artifact, baseCacheDir string) (string, error) {
	hashHex, err := dep.Hash()
	if err != nil {
		return "", err
	}
	key := dep.Coords.SanitizedKey()

	shadeSlot := cachelayout.NamedSlot(baseCacheDir, key, hashHex, cachelayout.ShadeOutputDirName)
	if marker, ok, err := shadeSlot.ReadMarker(); err == nil && ok && marker == cachelayout.Success {
		if path, exists := pathops.Exists(shadeSlot.OutputDir()); exists {
			return path, nil
		}
	}

	strippedSlot := cachelayout.SlotFor(baseCacheDir, key, hashHex, step.CompileGwtIncompatibleStripped)
	if path, exists := pathops.Exists(strippedSlot.OutputDir()); exists {
		return path, nil
	}

	return dep.ArtifactFile, nil
}

// classpathFor builds the ordered classpath for every transitive
// dependency of a, in the order transitiveDeps discovers them.
func classpathFor(a *artifact.Artifact, baseCacheDir string) ([]string, error) {
	var entries []string
	for _, dep := range transitiveDeps(a) {
		entry, err := classpathEntry(dep, baseCacheDir)
		if err != nil {
			return nil, err
		}
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
