// Package httprepo implements resolver.Resolver against a remote
// artifact repository served over plain HTTP: one JSON manifest per
// coordinate, plus the artifact's archive, both fetched by coordinate-
// derived URL.
package httprepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resty.dev/v3"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/graph"
	"github.com/vk/buildgraphgo/internal/resolver"
)

// Resolver fetches manifests and archives from BaseURL, caching
// downloaded archives under ArchiveCacheDir keyed by sanitized
// coordinate so a repeated build across this resolver does not refetch.
type Resolver struct {
	BaseURL        string
	ArchiveCacheDir string
	Request        *buildrequest.Request
	Client         *resty.Client // lazily defaulted if nil
}

func (r *Resolver) client() *resty.Client {
	if r.Client == nil {
		r.Client = resty.New().SetBaseURL(r.BaseURL)
	}
	return r.Client
}

// Resolve fetches root's manifest and recursively follows DirectDeps,
// fetching each dependency's manifest and archive in turn.
func (r *Resolver) Resolve(ctx context.Context, root coords.Coords, scope buildrequest.ClasspathScope) (*graph.Graph, error) {
	g := graph.New()
	built := make(map[string]*artifact.Artifact)

	rootArtifact, err := r.build(ctx, root.String(), artifact.Root, g, built)
	if err != nil {
		return nil, err
	}
	g.AddRoot(rootArtifact)
	return g, nil
}

func (r *Resolver) build(ctx context.Context, coordsStr string, forceKind artifact.Kind, g *graph.Graph, built map[string]*artifact.Artifact) (*artifact.Artifact, error) {
	if a, ok := built[coordsStr]; ok {
		return a, nil
	}

	m, err := r.fetchManifest(ctx, coordsStr)
	if err != nil {
		return nil, err
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
	for find, replace := range m.ShadeMappings {
		a.ShadeMappings = append(a.ShadeMappings, artifact.ShadeMapping{Find: find, Replace: replace})
	}

	if m.ArchiveURL != "" && (kind == artifact.Dependency || kind == artifact.JreBinary) {
		path, err := r.fetchArchive(ctx, c, m.ArchiveURL)
		if err != nil {
			return nil, err
		}
		a.ArtifactFile = path
	}

	built[coordsStr] = a
	g.AddArtifact(a)

	for _, depCoords := range m.DirectDeps {
		dep, err := r.build(ctx, depCoords, artifact.Dependency, g, built)
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

func (r *Resolver) fetchManifest(ctx context.Context, coordsStr string) (resolver.Manifest, error) {
	var m resolver.Manifest

	resp, err := r.client().R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s.manifest.json", coordsStr))
	if err != nil {
		return m, fmt.Errorf("httprepo: fetching manifest for %q: %w", coordsStr, err)
	}
	if resp.IsError() {
		return m, fmt.Errorf("httprepo: manifest for %q: server returned %s", coordsStr, resp.Status())
	}
	if err := json.Unmarshal(resp.Bytes(), &m); err != nil {
		return m, fmt.Errorf("httprepo: decoding manifest for %q: %w", coordsStr, err)
	}
	return m, nil
}

func (r *Resolver) fetchArchive(ctx context.Context, c coords.Coords, archiveURL string) (string, error) {
	cachePath := filepath.Join(r.ArchiveCacheDir, c.SanitizedKey()+".jar")
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := os.MkdirAll(r.ArchiveCacheDir, 0o755); err != nil {
		return "", err
	}

	resp, err := r.client().R().SetContext(ctx).SetOutputFileName(cachePath).Get(archiveURL)
	if err != nil {
		return "", fmt.Errorf("httprepo: fetching archive for %q: %w", c, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("httprepo: archive for %q: server returned %s", c, resp.Status())
	}
	return cachePath, nil
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
