package stepworkers

import (
	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/pathops"
	"github.com/vk/buildgraphgo/internal/step"
)

// runAssemble copies the Closure step's output to the request's final
// target directory (spec.md §4.4: "copies slot(Closure)/output/ to the
// final target directory").
func (t *Tools) runAssemble(a *artifact.Artifact, slot cachelayout.Slot) (cachelayout.Marker, error) {
	hashHex, err := a.Hash()
	if err != nil {
		return "", err
	}
	closureOutput := cachelayout.SlotFor(t.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, step.ClosureCompiler).OutputDir()

	files, err := pathops.Gather(closureOutput, pathops.AllFiles)
	if err != nil {
		return "", err
	}
	if _, err := pathops.Copy(closureOutput, files, a.Request.TargetDir, nil); err != nil {
		return "", err
	}
	if _, err := pathops.Copy(closureOutput, files, slot.OutputDir(), nil); err != nil {
		return "", err
	}
	return cachelayout.Success, nil
}
