// Package resolver defines the Resolver seam: the one injected
// component responsible for turning a root coordinate into a fully
// populated ArtifactGraph. The scheduler and every step worker are
// agnostic to where artifacts actually come from.
package resolver

import (
	"context"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/graph"
)

// Resolver produces the initial ArtifactGraph for a build. It is called
// once per build, before the Scheduler starts. Implementations must
// classify every artifact's Kind (Root, Dependency, JavacBootstrap,
// JreBinary) and must have materialized any archive each Dependency/
// JreBinary artifact needs on local disk (ArtifactFile) by the time
// Resolve returns.
type Resolver interface {
	Resolve(ctx context.Context, root coords.Coords, scope buildrequest.ClasspathScope) (*graph.Graph, error)
}

// Manifest is the declarative shape a Resolver implementation decodes
// per artifact: its coordinates, its kind, its direct dependencies (by
// coordinate string), its shade mappings, and where to fetch or find its
// archive.
type Manifest struct {
	Coords            string            `json:"coords"`
	Kind              string            `json:"kind"`
	DirectDeps        []string          `json:"directDeps,omitempty"`
	ShadeMappings     map[string]string `json:"shadeMappings,omitempty"`
	ProcessingSkipped bool              `json:"processingSkipped,omitempty"`
	ArchiveURL        string            `json:"archiveUrl,omitempty"`
}
