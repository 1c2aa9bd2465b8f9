package stepworkers

import (
	"context"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/steplog"
)

// runCompile compiles a's unpacked source against the classpath
// assembled from its transitive dependencies.
func (t *Tools) runCompile(ctx context.Context, a *artifact.Artifact, hashHex string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	return t.compile(ctx, a, t.unpackedSourceRoots(a, hashHex), slot, logger)
}

// runCompileStripped is identical to runCompile except that it reads
// from the GwtIncompatibleStrip output instead of the raw unpacked
// source. It catches compile errors the stripper may have introduced,
// per spec.md §4.4, and its output is the input to Shade and a
// classpath entry for dependents.
func (t *Tools) runCompileStripped(ctx context.Context, a *artifact.Artifact, hashHex string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	return t.compile(ctx, a, []string{t.strippedSourceRoot(a, hashHex)}, slot, logger)
}

func (t *Tools) compile(ctx context.Context, a *artifact.Artifact, sourceRoots []string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	classpath, err := classpathFor(a, t.BaseCacheDir)
	if err != nil {
		return "", err
	}

	result, err := t.Compiler.Invoke(ctx, externaltool.CompileInput{
		SourceRoots: sourceRoots,
		Classpath:   classpath,
		OutputDir:   slot.OutputDir(),
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
		return cachelayout.Failed, errCompileFailed
	}
	if err := buf.Flush(slot, logger, true); err != nil {
		return "", err
	}
	return cachelayout.Success, nil
}
