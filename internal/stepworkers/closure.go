package stepworkers

import (
	"context"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/step"
	"github.com/vk/buildgraphgo/internal/steplog"
)

// runClosure bundles a's own Transpile output together with the
// Transpile output of every transitive dependency (spec.md §4.4:
// "the transpile output plus an accumulation of transitive dependency
// transpile outputs").
func (t *Tools) runClosure(ctx context.Context, a *artifact.Artifact, hashHex string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	sourceDirs := []string{cachelayout.SlotFor(t.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, step.Transpile).OutputDir()}
	for _, dep := range transitiveDeps(a) {
		depHash, err := dep.Hash()
		if err != nil {
			return "", err
		}
		sourceDirs = append(sourceDirs, cachelayout.SlotFor(t.BaseCacheDir, dep.Coords.SanitizedKey(), depHash, step.Transpile).OutputDir())
	}

	req := a.Request
	result, err := t.Closure.Invoke(ctx, externaltool.ClosureInput{
		SourceDirs:        sourceDirs,
		Externs:           req.Externs,
		OptimizationLevel: req.Optimization,
		LanguageOut:       req.LanguageOut,
		FormattingOptions: req.FormattingOptionsStrings(),
		OutputDir:         slot.OutputDir(),
	})
	if err != nil {
		return "", err
	}
	buf := steplog.New()
	buf.AppendDiagnostics(result.Diagnostics)

	if !result.Success || result.HasErrors() {
		if err := buf.Flush(slot, logger, false); err != nil {
			return "", err
		}
		return cachelayout.Failed, errClosureFailed
	}
	if err := buf.Flush(slot, logger, true); err != nil {
		return "", err
	}
	return cachelayout.Success, nil
}
