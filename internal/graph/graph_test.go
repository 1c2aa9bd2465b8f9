package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
)

func mkArtifact(name string) *artifact.Artifact {
	return &artifact.Artifact{
		Coords:  coords.New("com.example", name, "1.0", ""),
		Kind:    artifact.Dependency,
		Request: &buildrequest.Request{},
	}
}

func TestAddArtifactIsIdempotent(t *testing.T) {
	g := New()
	a := mkArtifact("foo")
	g.AddArtifact(a)
	g.AddArtifact(a)
	assert.Len(t, g.All(), 1)
}

func TestAddDependencyBuildsDependentsIndex(t *testing.T) {
	g := New()
	root := mkArtifact("root")
	dep := mkArtifact("dep")
	root.DirectDeps = []*artifact.Artifact{dep}

	g.AddArtifact(root)
	g.AddArtifact(dep)
	require.NoError(t, g.AddDependency(root, dep))

	dependents, err := g.Dependents(dep.Coords.SanitizedKey())
	require.NoError(t, err)
	require.Len(t, dependents, 1)
	assert.Equal(t, root.Coords, dependents[0].Coords)
}

func TestAddDependencyErrorsOnUnknownNodes(t *testing.T) {
	g := New()
	root := mkArtifact("root")
	dep := mkArtifact("dep")
	g.AddArtifact(root)

	err := g.AddDependency(root, dep)
	assert.Error(t, err)
}

func TestLookupFindsExactMatch(t *testing.T) {
	g := New()
	a := mkArtifact("foo")
	g.AddArtifact(a)

	got, err := g.Lookup(a.Coords.String())
	require.NoError(t, err)
	assert.Equal(t, a.Coords, got.Coords)
}

func TestLookupReturnsGraphErrorWithSuggestions(t *testing.T) {
	g := New()
	g.AddArtifact(mkArtifact("foo"))
	g.AddArtifact(mkArtifact("foobar"))

	_, err := g.Lookup("com.example:fooba:1.0")
	require.Error(t, err)
	var graphErr *buildrequest.GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.NotEmpty(t, graphErr.Suggestions)
}

func TestDetectCyclesOnAcyclicGraph(t *testing.T) {
	g := New()
	root := mkArtifact("root")
	dep := mkArtifact("dep")
	root.DirectDeps = []*artifact.Artifact{dep}
	g.AddArtifact(root)
	g.AddArtifact(dep)

	assert.NoError(t, g.DetectCycles())
}

func TestDetectCyclesFindsCycle(t *testing.T) {
	g := New()
	a := mkArtifact("a")
	b := mkArtifact("b")
	a.DirectDeps = []*artifact.Artifact{b}
	b.DirectDeps = []*artifact.Artifact{a}
	g.AddArtifact(a)
	g.AddArtifact(b)

	err := g.DetectCycles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestRootsPreservesRegistrationOrder(t *testing.T) {
	g := New()
	r1 := mkArtifact("r1")
	r2 := mkArtifact("r2")
	g.AddArtifact(r1)
	g.AddArtifact(r2)
	g.AddRoot(r1)
	g.AddRoot(r2)

	roots := g.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "r1", roots[0].Coords.Name)
	assert.Equal(t, "r2", roots[1].Coords.Name)
}
