package stepworkers

import (
	"context"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/pathops"
	"github.com/vk/buildgraphgo/internal/steplog"
)

// runTranspile partitions a's stripped source by extension and invokes
// the Java-to-JavaScript transpiler with the .java and .native.js sets,
// then copies the plain .js set into the output verbatim (spec.md §4.4).
func (t *Tools) runTranspile(ctx context.Context, a *artifact.Artifact, hashHex string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	sourceRoot := t.strippedSourceRoot(a, hashHex)

	javaFiles, err := pathops.Gather(sourceRoot, pathops.ExtensionPredicate(".java"))
	if err != nil {
		return "", err
	}
	nativeJSFiles, err := pathops.Gather(sourceRoot, pathops.ExtensionPredicate(".native.js"))
	if err != nil {
		return "", err
	}
	plainJSFiles, err := pathops.Gather(sourceRoot, isPlainJS)
	if err != nil {
		return "", err
	}

	classpath, err := classpathFor(a, t.BaseCacheDir)
	if err != nil {
		return "", err
	}

	result, err := t.Transpiler.Invoke(ctx, externaltool.TranspileInput{
		JavaFiles:     javaFiles,
		NativeJSFiles: nativeJSFiles,
		Classpath:     classpath,
		OutputDir:     slot.OutputDir(),
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
		return cachelayout.Failed, errTranspileFailed
	}

	if _, err := pathops.Copy(sourceRoot, plainJSFiles, slot.OutputDir(), nil); err != nil {
		return "", err
	}

	if err := buf.Flush(slot, logger, true); err != nil {
		return "", err
	}
	return cachelayout.Success, nil
}

// isPlainJS matches ".js" files that are not ".native.js" companions —
// those are handled separately, passed straight to the transpiler.
func isPlainJS(path string) bool {
	ext := pathops.ExtensionPredicate(".js")
	native := pathops.ExtensionPredicate(".native.js")
	return ext(path) && !native(path)
}
