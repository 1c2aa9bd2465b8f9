package stepworkers

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/pathops"
)

// sourceEntryExtensions lists the archive entry suffixes Unpack treats
// as "relevant source entries" worth extracting; everything else
// (class files, manifests) is ignored. ".native.js" entries are already
// covered by the ".js" suffix check.
var sourceEntryExtensions = []string{".java", ".js"}

func isSourceEntry(name string) bool {
	for _, ext := range sourceEntryExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// runUnpack extracts a's archive's source entries into slot/output/. A
// root artifact has no archive at all — its source already sits on
// disk under a.SourceRoots — so unpacking it is a trivial Success.
func (t *Tools) runUnpack(a *artifact.Artifact, slot cachelayout.Slot) (cachelayout.Marker, error) {
	if a.ArtifactFile == "" {
		return cachelayout.Success, nil
	}

	r, err := zip.OpenReader(a.ArtifactFile)
	if err != nil {
		return "", err
	}
	defer r.Close()

	outputDir := slot.OutputDir()
	extracted := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isSourceEntry(f.Name) {
			continue
		}
		dest := filepath.Join(outputDir, f.Name)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := extractEntry(f, dest); err != nil {
			return "", err
		}
		extracted++
	}

	if extracted == 0 {
		if err := pathops.RemoveAll(outputDir); err != nil {
			return "", err
		}
		return cachelayout.Aborted, nil
	}
	return cachelayout.Success, nil
}

func extractEntry(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
