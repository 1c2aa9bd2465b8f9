package transforms

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/pathops"
)

// Shade rewrites package-prefixed Java source under sourceOutputDir into
// destOutputDir according to mappings, leaving everything else copied
// verbatim. Returns Skipped with no copy performed when processingSkipped
// is true or mappings is empty, matching J2clStepWorkerShade's
// "Not found" short-circuit.
//
// When two mappings' Find prefixes overlap (one is a prefix of another),
// the longest prefix wins: it claims every file under its root before
// shorter, less-specific mappings get a chance, so a file is shaded by
// at most one mapping. This resolves DESIGN.md's shade-overlap open
// question; the original Java iterated its mapping map in arbitrary
// HashMap order with no such precedence rule.
func Shade(sourceOutputDir string, mappings []artifact.ShadeMapping, destOutputDir string, processingSkipped bool) (cachelayout.Marker, error) {
	if processingSkipped || len(mappings) == 0 {
		return cachelayout.Skipped, nil
	}

	if err := pathops.CreateIfAbsent(destOutputDir); err != nil {
		return "", err
	}

	allFiles, err := pathops.Gather(sourceOutputDir, pathops.AllFiles)
	if err != nil {
		return "", err
	}

	remaining := make(map[string]bool, len(allFiles))
	for _, f := range allFiles {
		remaining[f] = true
	}

	ordered := make([]artifact.ShadeMapping, len(mappings))
	copy(ordered, mappings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Find) > len(ordered[j].Find)
	})

	for _, mapping := range ordered {
		shadedRoot := filepath.Join(sourceOutputDir, filepath.FromSlash(strings.ReplaceAll(mapping.Find, ".", "/")))

		var claimed []string
		for f := range remaining {
			if isUnder(shadedRoot, f) {
				claimed = append(claimed, f)
			}
		}
		for _, f := range claimed {
			delete(remaining, f)
		}
		sort.Strings(claimed)

		destDir := destOutputDir
		if mapping.Replace != "" {
			destDir = filepath.Join(destOutputDir, filepath.FromSlash(strings.ReplaceAll(mapping.Replace, ".", "/")))
		}

		find, replace := mapping.Find, mapping.Replace
		findSlash := strings.ReplaceAll(find, ".", "/")
		replaceSlash := strings.ReplaceAll(replace, ".", "/")
		findBackslash := strings.ReplaceAll(find, ".", `\`)
		replaceBackslash := strings.ReplaceAll(replace, ".", `\`)
		rewrite := func(content []byte, relPath string) ([]byte, error) {
			if strings.HasSuffix(relPath, ".java") {
				s := strings.ReplaceAll(string(content), find, replace)
				s = strings.ReplaceAll(s, findSlash, replaceSlash)
				s = strings.ReplaceAll(s, findBackslash, replaceBackslash)
				return []byte(s), nil
			}
			return content, nil
		}
		if _, err := pathops.Copy(shadedRoot, claimed, destDir, rewrite); err != nil {
			return "", err
		}
	}

	var nonShaded []string
	for f := range remaining {
		nonShaded = append(nonShaded, f)
	}
	sort.Strings(nonShaded)
	if _, err := pathops.Copy(sourceOutputDir, nonShaded, destOutputDir, nil); err != nil {
		return "", err
	}

	return cachelayout.Success, nil
}

func isUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
