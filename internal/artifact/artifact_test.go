package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
)

func testRequest() *buildrequest.Request {
	return &buildrequest.Request{
		Optimization: buildrequest.OptimizationAdvanced,
		Defines:      [][2]string{{"goog.DEBUG", "false"}},
		Externs:      []string{"externs.js"},
	}
}

func leaf(t *testing.T, name string) *Artifact {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "dep.jar")
	require.NoError(t, os.WriteFile(file, []byte("jar-bytes-"+name), 0o644))
	return &Artifact{
		Coords:       coords.New("com.example", name, "1.0", ""),
		Kind:         Dependency,
		ArtifactFile: file,
		Request:      testRequest(),
	}
}

func TestHashIsDeterministic(t *testing.T) {
	dep := leaf(t, "dep")
	root := &Artifact{
		Coords:     coords.New("com.example", "root", "1.0", ""),
		Kind:       Root,
		DirectDeps: []*Artifact{dep},
		Request:    testRequest(),
	}

	h1, err := root.Hash()
	require.NoError(t, err)
	h2, err := root.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}

func TestHashChangesWithDependencyContent(t *testing.T) {
	depA := leaf(t, "a")
	rootA := &Artifact{Coords: coords.New("com.example", "root", "1.0", ""), Kind: Root, DirectDeps: []*Artifact{depA}, Request: testRequest()}

	depB := leaf(t, "b")
	rootB := &Artifact{Coords: coords.New("com.example", "root", "1.0", ""), Kind: Root, DirectDeps: []*Artifact{depB}, Request: testRequest()}

	hA, err := rootA.Hash()
	require.NoError(t, err)
	hB, err := rootB.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hA, hB)
}

func TestHashChangesWithTestID(t *testing.T) {
	dep := leaf(t, "dep")
	req := testRequest()
	reqWithTest := testRequest()
	reqWithTest.TestID = "MyGwtTest"

	a := &Artifact{Coords: coords.New("com.example", "root", "1.0", ""), Kind: Root, DirectDeps: []*Artifact{dep}, Request: req}
	b := &Artifact{Coords: coords.New("com.example", "root", "1.0", ""), Kind: Root, DirectDeps: []*Artifact{dep}, Request: reqWithTest}

	hA, err := a.Hash()
	require.NoError(t, err)
	hB, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hA, hB)
}

func TestHashDetectsCycle(t *testing.T) {
	a := &Artifact{Coords: coords.New("com.example", "a", "1.0", ""), Kind: Root, Request: testRequest()}
	b := &Artifact{Coords: coords.New("com.example", "b", "1.0", ""), Kind: Root, Request: testRequest()}
	a.DirectDeps = []*Artifact{b}
	b.DirectDeps = []*Artifact{a}

	_, err := a.Hash()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestKindIsBootstrapOrJre(t *testing.T) {
	assert.True(t, JavacBootstrap.IsBootstrapOrJre())
	assert.True(t, JreBinary.IsBootstrapOrJre())
	assert.False(t, Root.IsBootstrapOrJre())
	assert.False(t, Dependency.IsBootstrapOrJre())
}

func TestIsDependency(t *testing.T) {
	d := leaf(t, "x")
	assert.True(t, d.IsDependency())

	r := &Artifact{Kind: Root}
	assert.False(t, r.IsDependency())
}
