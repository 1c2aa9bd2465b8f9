package stepworkers

import (
	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/step"
)

// unpackedSourceRoots returns the directories Compile and Strip treat as
// a's own source: a root artifact's configured project directories, or
// a dependency's Unpack output.
func (t *Tools) unpackedSourceRoots(a *artifact.Artifact, hashHex string) []string {
	if a.Kind == artifact.Root {
		return a.SourceRoots
	}
	unpackSlot := cachelayout.SlotFor(t.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, step.Unpack)
	return []string{unpackSlot.OutputDir()}
}

// strippedSourceRoot returns the directory Transpile reads a's own
// stripped source from.
func (t *Tools) strippedSourceRoot(a *artifact.Artifact, hashHex string) string {
	return cachelayout.SlotFor(t.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, step.GwtIncompatibleStrip).OutputDir()
}
