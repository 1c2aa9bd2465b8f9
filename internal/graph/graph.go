// Package graph assembles resolved artifacts into an ArtifactGraph: a
// concurrency-safe DAG keyed by sanitized coordinate string, with
// dependency/dependent indexing and cycle detection.
package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
)

// entry is one vertex: the artifact itself plus the reverse edges
// (dependents) that AddDependency fills in as forward edges are added.
type entry struct {
	artifact   *artifact.Artifact
	dependents map[string]*artifact.Artifact
}

// Graph is the ArtifactGraph: every artifact participating in a build,
// indexed by SanitizedKey, with bidirectional edges. All operations are
// concurrency-safe.
type Graph struct {
	mu      sync.RWMutex
	entries map[string]*entry
	roots   []string // insertion-ordered keys registered via AddRoot
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{entries: make(map[string]*entry)}
}

// AddArtifact registers a into the graph under its coordinate key. Adding
// an artifact whose key already exists is a no-op — resolvers may
// legitimately encounter the same dependency coordinate more than once
// while walking a tree of manifests.
func (g *Graph) AddArtifact(a *artifact.Artifact) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := a.Coords.SanitizedKey()
	if _, ok := g.entries[key]; ok {
		return
	}
	g.entries[key] = &entry{artifact: a, dependents: make(map[string]*artifact.Artifact)}
}

// AddRoot marks a as a root artifact: a build target the Scheduler must
// drive through the terminal step, as opposed to a dependency pulled in
// only to satisfy a classpath.
func (g *Graph) AddRoot(a *artifact.Artifact) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := a.Coords.SanitizedKey()
	for _, existing := range g.roots {
		if existing == key {
			return
		}
	}
	g.roots = append(g.roots, key)
}

// AddDependency records that dependent depends on dependency. Both
// artifacts must already have been added via AddArtifact. This both
// appends to dependency's dependents index and, in the common case where
// callers build DirectDeps themselves before calling AddArtifact, is
// idempotent with what Artifact.DirectDeps already encodes — the index
// here exists purely to let the Scheduler walk dependents in O(1) without
// re-deriving them from every artifact's DirectDeps on every step.
func (g *Graph) AddDependency(dependent, dependency *artifact.Artifact) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	depKey := dependency.Coords.SanitizedKey()
	depEntry, ok := g.entries[depKey]
	if !ok {
		return fmt.Errorf("dependency not in graph: %s", dependency.Coords)
	}
	dependentKey := dependent.Coords.SanitizedKey()
	if _, ok := g.entries[dependentKey]; !ok {
		return fmt.Errorf("dependent not in graph: %s", dependent.Coords)
	}

	depEntry.dependents[dependentKey] = dependent
	return nil
}

// Get returns the artifact registered under key.
func (g *Graph) Get(key string) (*artifact.Artifact, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entries[key]
	if !ok {
		return nil, false
	}
	return e.artifact, true
}

// Lookup resolves a display coordinate string to its artifact, returning
// a GraphError with ranked nearest-match suggestions when it is absent —
// the "did you mean" behavior spec.md §7 calls for on an unresolved
// coordinate reference.
func (g *Graph) Lookup(coordsDisplay string) (*artifact.Artifact, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, e := range g.entries {
		if e.artifact.Coords.String() == coordsDisplay {
			return e.artifact, nil
		}
	}

	known := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		known = append(known, e.artifact.Coords.String())
	}
	sort.Strings(known)
	return nil, buildrequest.NewUnresolvedCoordinateError(coordsDisplay, known)
}

// Dependents returns every artifact that directly depends on the
// artifact registered under key.
func (g *Graph) Dependents(key string) ([]*artifact.Artifact, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.entries[key]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", key)
	}
	out := make([]*artifact.Artifact, 0, len(e.dependents))
	for _, dep := range e.dependents {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coords.Compare(out[j].Coords) < 0 })
	return out, nil
}

// Roots returns every artifact registered via AddRoot, in registration
// order.
func (g *Graph) Roots() []*artifact.Artifact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*artifact.Artifact, 0, len(g.roots))
	for _, key := range g.roots {
		out = append(out, g.entries[key].artifact)
	}
	return out
}

// All returns every artifact in the graph, sorted by coordinate for
// deterministic iteration order.
func (g *Graph) All() []*artifact.Artifact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*artifact.Artifact, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, e.artifact)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coords.Compare(out[j].Coords) < 0 })
	return out
}

// DetectCycles walks the dependency edges (DirectDeps, the forward
// direction) with classic three-color DFS and reports the first cycle
// found, if any.
func (g *Graph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(a *artifact.Artifact) error
	visit = func(a *artifact.Artifact) error {
		key := a.Coords.SanitizedKey()
		if permanent[key] {
			return nil
		}
		if temporary[key] {
			return fmt.Errorf("cycle detected involving artifact %q", a.Coords)
		}
		temporary[key] = true
		for _, dep := range a.DirectDeps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, key)
		permanent[key] = true
		return nil
	}

	for _, e := range g.entries {
		if !permanent[e.artifact.Coords.SanitizedKey()] {
			if err := visit(e.artifact); err != nil {
				return err
			}
		}
	}
	return nil
}
