// Package static implements resolver.Resolver over a pre-built,
// in-memory manifest map. It never touches the network or disk beyond
// whatever ArtifactFile paths the caller already supplied — useful for
// tests and for the worked examples in the documentation.
package static

import (
	"context"
	"fmt"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/graph"
	"github.com/vk/buildgraphgo/internal/resolver"
)

// Resolver resolves coordinates purely from an in-memory map of
// coordinate string to resolver.Manifest, plus a map of archive paths
// already present on local disk.
type Resolver struct {
	Manifests     map[string]resolver.Manifest
	ArchivePaths  map[string]string // coords string -> local archive path; Manifest.ArchiveURL is not consulted
	Request       *buildrequest.Request
}

// Resolve builds the ArtifactGraph by recursively following DirectDeps
// starting at root, looking each one up in Manifests.
func (r *Resolver) Resolve(ctx context.Context, root coords.Coords, scope buildrequest.ClasspathScope) (*graph.Graph, error) {
	g := graph.New()
	built := make(map[string]*artifact.Artifact)

	rootArtifact, err := r.build(root.String(), artifact.Root, g, built)
	if err != nil {
		return nil, err
	}
	g.AddRoot(rootArtifact)
	return g, nil
}

func (r *Resolver) build(coordsStr string, forceKind artifact.Kind, g *graph.Graph, built map[string]*artifact.Artifact) (*artifact.Artifact, error) {
	if a, ok := built[coordsStr]; ok {
		return a, nil
	}

	m, ok := r.Manifests[coordsStr]
	if !ok {
		return nil, fmt.Errorf("static resolver: no manifest for %q", coordsStr)
	}

	c, err := coords.Parse(m.Coords)
	if err != nil {
		return nil, err
	}

	kind := forceKind
	if forceKind != artifact.Root {
		kind = kindFromString(m.Kind)
	}

	a := &artifact.Artifact{
		Coords:            c,
		Kind:              kind,
		ProcessingSkipped: m.ProcessingSkipped,
		Request:           r.Request,
	}
	if path, ok := r.ArchivePaths[coordsStr]; ok {
		a.ArtifactFile = path
	}
	for find, replace := range m.ShadeMappings {
		a.ShadeMappings = append(a.ShadeMappings, artifact.ShadeMapping{Find: find, Replace: replace})
	}

	built[coordsStr] = a
	g.AddArtifact(a)

	for _, depCoords := range m.DirectDeps {
		dep, err := r.build(depCoords, artifact.Dependency, g, built)
		if err != nil {
			return nil, err
		}
		a.DirectDeps = append(a.DirectDeps, dep)
		if err := g.AddDependency(a, dep); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func kindFromString(s string) artifact.Kind {
	switch s {
	case "JavacBootstrap":
		return artifact.JavacBootstrap
	case "JreBinary":
		return artifact.JreBinary
	case "Ignored":
		return artifact.Ignored
	case "Root":
		return artifact.Root
	default:
		return artifact.Dependency
	}
}
