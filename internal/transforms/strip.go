// Package transforms holds the two source-to-source rewrites that run
// as part of the pipeline outside the external-tool adapters proper:
// GwtIncompatible stripping and package shading.
package transforms

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/pathops"
)

// Strip copies the .java files under sourceRoots into outputDir, runs
// stripper over the copy in place, then copies every .js file from
// sourceRoots verbatim. If no .java files exist across every source
// root, outputDir is removed and Aborted is returned, matching
// GwtIncompatibleStripPreprocessor's "don't want to leave empty output
// directory when its empty" behavior.
//
// When two source roots contain a file at the same relative path, the
// later root's copy wins; that collision is logged at Warn level rather
// than silently dropped, per DESIGN.md's resolution of the multi-root
// collision open question.
func Strip(ctx context.Context, sourceRoots []string, outputDir string, stripper externaltool.Stripper, logger *slog.Logger) (cachelayout.Marker, error) {
	if err := pathops.CreateIfAbsent(outputDir); err != nil {
		return "", err
	}

	seen := make(map[string]string) // relative path -> source root that wrote it
	var javaFileCount int
	for _, root := range sourceRoots {
		javaFiles, err := pathops.Gather(root, pathops.ExtensionPredicate(".java"))
		if err != nil {
			return "", err
		}
		written, err := pathops.Copy(root, javaFiles, outputDir, nil)
		if err != nil {
			return "", err
		}
		for _, w := range written {
			rel, _ := filepath.Rel(outputDir, w)
			if prior, exists := seen[rel]; exists {
				logger.Warn("strip: source root collision, later root wins",
					"path", rel, "previous_root", prior, "winning_root", root)
			}
			seen[rel] = root
		}
		javaFileCount += len(written)
	}

	if javaFileCount == 0 {
		if err := pathops.RemoveAll(outputDir); err != nil {
			return "", err
		}
		return cachelayout.Aborted, nil
	}

	result, err := stripper.Invoke(ctx, externaltool.StripInput{SourceDir: outputDir, OutputDir: outputDir})
	if err != nil {
		return "", err
	}
	if result.HasErrors() || !result.Success {
		return cachelayout.Failed, fmt.Errorf("gwt-incompatible stripper reported errors")
	}

	for _, root := range sourceRoots {
		jsFiles, err := pathops.Gather(root, pathops.ExtensionPredicate(".js"))
		if err != nil {
			return "", err
		}
		if _, err := pathops.Copy(root, jsFiles, outputDir, nil); err != nil {
			return "", err
		}
	}

	return cachelayout.Success, nil
}
