package stepworkers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/step"
)

func TestClasspathEntryFallsBackToRawArtifactFile(t *testing.T) {
	base := t.TempDir()
	rawJar := filepath.Join(t.TempDir(), "dep.jar")
	require.NoError(t, os.WriteFile(rawJar, []byte("not a real jar"), 0o644))

	dep := &artifact.Artifact{
		Coords:       coords.New("com.example", "dep", "1.0", ""),
		Kind:         artifact.Dependency,
		ArtifactFile: rawJar,
		Request:      &buildrequest.Request{},
	}

	entry, err := classpathEntry(dep, base)
	require.NoError(t, err)
	assert.Equal(t, rawJar, entry)
}

func TestClasspathEntryPrefersStrippedOutputOverRawFile(t *testing.T) {
	base := t.TempDir()
	rawJar := filepath.Join(t.TempDir(), "dep.jar")
	require.NoError(t, os.WriteFile(rawJar, []byte("not a real jar"), 0o644))

	dep := &artifact.Artifact{
		Coords:       coords.New("com.example", "dep", "1.0", ""),
		Kind:         artifact.Dependency,
		ArtifactFile: rawJar,
		Request:      &buildrequest.Request{},
	}

	hashHex, err := dep.Hash()
	require.NoError(t, err)
	strippedSlot := cachelayout.SlotFor(base, dep.Coords.SanitizedKey(), hashHex, step.CompileGwtIncompatibleStripped)
	require.NoError(t, os.MkdirAll(strippedSlot.OutputDir(), 0o755))

	entry, err := classpathEntry(dep, base)
	require.NoError(t, err)
	assert.Equal(t, strippedSlot.OutputDir(), entry)
}

func TestClasspathEntryIgnoresShadeOutputWithoutSuccessMarker(t *testing.T) {
	base := t.TempDir()
	rawJar := filepath.Join(t.TempDir(), "dep.jar")
	require.NoError(t, os.WriteFile(rawJar, []byte("not a real jar"), 0o644))

	dep := &artifact.Artifact{
		Coords:       coords.New("com.example", "dep", "1.0", ""),
		Kind:         artifact.Dependency,
		ArtifactFile: rawJar,
		Request:      &buildrequest.Request{},
	}

	hashHex, err := dep.Hash()
	require.NoError(t, err)
	shadeSlot := cachelayout.NamedSlot(base, dep.Coords.SanitizedKey(), hashHex, cachelayout.ShadeOutputDirName)
	require.NoError(t, os.MkdirAll(shadeSlot.OutputDir(), 0o755))
	// no marker written: shade never completed, so it must not be trusted.

	entry, err := classpathEntry(dep, base)
	require.NoError(t, err)
	assert.Equal(t, rawJar, entry)
}

func TestClasspathForOrdersTransitiveDependenciesDepthFirst(t *testing.T) {
	base := t.TempDir()
	leafJar := filepath.Join(t.TempDir(), "leaf.jar")
	midJar := filepath.Join(t.TempDir(), "mid.jar")
	require.NoError(t, os.WriteFile(leafJar, []byte("leaf"), 0o644))
	require.NoError(t, os.WriteFile(midJar, []byte("mid"), 0o644))

	req := &buildrequest.Request{}
	leaf := &artifact.Artifact{Coords: coords.New("com.example", "leaf", "1.0", ""), Kind: artifact.Dependency, ArtifactFile: leafJar, Request: req}
	mid := &artifact.Artifact{Coords: coords.New("com.example", "mid", "1.0", ""), Kind: artifact.Dependency, ArtifactFile: midJar, DirectDeps: []*artifact.Artifact{leaf}, Request: req}
	root := &artifact.Artifact{Coords: coords.New("com.example", "root", "1.0", ""), Kind: artifact.Root, DirectDeps: []*artifact.Artifact{mid}, Request: req}

	entries, err := classpathFor(root, base)
	require.NoError(t, err)
	assert.Equal(t, []string{midJar, leafJar}, entries)
}
