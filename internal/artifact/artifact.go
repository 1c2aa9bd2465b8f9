// Package artifact defines Artifact, the node of the dependency graph,
// and the artifact-hash computation that keys every cache slot.
package artifact

import (
	"fmt"
	"os"
	"sync"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/hashbuilder"
)

// Kind classifies an Artifact, driving per-step skip predicates (see
// internal/step).
type Kind int

const (
	Root Kind = iota
	Dependency
	JavacBootstrap
	JreBinary
	Ignored
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Dependency:
		return "Dependency"
	case JavacBootstrap:
		return "JavacBootstrap"
	case JreBinary:
		return "JreBinary"
	case Ignored:
		return "Ignored"
	default:
		return "Unknown"
	}
}

// IsBootstrapOrJre reports whether this kind is exempt from most pipeline
// steps per spec.md §4.3's skipForBootstrapOrJre predicate.
func (k Kind) IsBootstrapOrJre() bool {
	return k == JavacBootstrap || k == JreBinary
}

// ShadeMapping is one (find, replace) package-prefix rewrite rule. Order
// matters for hashing and, per DESIGN.md's resolution of Open Question
// (b), for longest-prefix-wins precedence when prefixes overlap.
type ShadeMapping struct {
	Find    string
	Replace string
}

// Artifact is a resolved unit of source or binary in the build graph. It
// is immutable after graph construction except for its lazily-computed,
// memoized Hash.
type Artifact struct {
	Coords        coords.Coords
	Kind          Kind
	DirectDeps    []*Artifact // ordered, as declared; shared, not owned
	ShadeMappings []ShadeMapping
	ProcessingSkipped bool
	ArtifactFile  string // path to the distributable archive; Dependency/JRE kinds only
	SourceRoots   []string // project source directories; Root kind only, supplied by the resolver
	Request       *buildrequest.Request

	hashOnce sync.Once
	hashVal  string
	hashErr  error
}

// IsDependency reports whether this artifact's kind is Dependency.
func (a *Artifact) IsDependency() bool { return a.Kind == Dependency }

// Hash returns the artifact's fingerprint (spec.md §4.2), computing and
// memoizing it on first access. Concurrent callers block on the same
// sync.Once rather than racing to recompute.
func (a *Artifact) Hash() (string, error) {
	a.hashOnce.Do(func() {
		a.hashVal, a.hashErr = a.computeHash(newVisitorStack())
	})
	return a.hashVal, a.hashErr
}

// visitorStack detects recursion during hash computation. Per spec.md
// §4.2, cycles are impossible given the DAG invariant, but a defensive
// explicit stack turns a would-be infinite recursion into a fatal
// GraphError instead of a stack overflow, matching spec.md §7's
// "implementers MUST detect recursion via a visitor stack" requirement.
type visitorStack struct {
	onStack map[*Artifact]bool
}

func newVisitorStack() *visitorStack {
	return &visitorStack{onStack: make(map[*Artifact]bool)}
}

func (a *Artifact) computeHash(visiting *visitorStack) (string, error) {
	if visiting.onStack[a] {
		return "", &buildrequest.GraphError{Reason: fmt.Sprintf("cycle detected while hashing artifact %q", a.Coords.String())}
	}
	visiting.onStack[a] = true
	defer delete(visiting.onStack, a)

	b := hashbuilder.New()

	// 1. global request parameters affecting every output.
	req := a.Request
	b.AppendString(string(req.Optimization))
	b.AppendSortedPairs(req.Defines)
	b.AppendSortedStrings(req.Externs)
	b.AppendSortedStrings(req.FormattingOptionsStrings())
	b.AppendString(req.LanguageOut)
	b.AppendString(string(req.ClasspathScope))

	// 2. the artifact's own coordinates, canonical form.
	b.AppendString(a.Coords.String())

	// 3. each direct dependency's hash, recursively, in declared order.
	for _, dep := range a.DirectDeps {
		depHash, err := dep.computeHash(visiting)
		if err != nil {
			return "", err
		}
		b.AppendString(depHash)
	}

	// 4. for dependency-kind artifacts, the archive's own bytes.
	if a.Kind == Dependency || a.Kind == JreBinary {
		if a.ArtifactFile != "" {
			content, err := os.ReadFile(a.ArtifactFile)
			if err != nil {
				return "", err
			}
			b.AppendBytes(content)
		}
	}

	// 5. the sorted (find, replace) shade mapping entries.
	pairs := make([][2]string, len(a.ShadeMappings))
	for i, m := range a.ShadeMappings {
		pairs[i] = [2]string{m.Find, m.Replace}
	}
	b.AppendSortedPairs(pairs)

	// 6. the test identifier, if this request is a test variant.
	b.AppendString(req.TestID)

	return b.Finalize(), nil
}
