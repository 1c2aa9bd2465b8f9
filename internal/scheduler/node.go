package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/step"
)

// state is a node's lifecycle, mirroring the marker lifecycle at the
// (artifact, step) granularity the Scheduler drives.
type state int32

const (
	pending state = iota
	running
	done
	failed
)

// node is one (artifact, step) unit of scheduling. Per spec.md §4.5
// item 1, a node becomes ready when its own depCount reaches zero: one
// count for the artifact's own preceding step (sequential per
// artifact) plus one count per direct dependency's node for the same
// step (lockstep across the DAG).
type node struct {
	artifact *artifact.Artifact
	step     step.Kind

	depCount   atomic.Int32
	dependents []*node

	state    atomic.Int32
	err      error
	skipOnce sync.Once
}

func nodeKey(a *artifact.Artifact, k step.Kind) string {
	return a.Coords.SanitizedKey() + "#" + k.String()
}

// buildNodes walks every artifact reachable from root (via DirectDeps,
// deduplicated by coordinate key) and constructs one node per (artifact,
// step) pair, wiring dependents in both dimensions described above.
func buildNodes(root *artifact.Artifact) map[string]*node {
	artifacts := collectArtifacts(root)
	nodes := make(map[string]*node, len(artifacts)*len(step.All))

	for _, a := range artifacts {
		for _, k := range step.All {
			nodes[nodeKey(a, k)] = &node{artifact: a, step: k}
		}
	}

	for _, a := range artifacts {
		var prev *node
		for _, k := range step.All {
			n := nodes[nodeKey(a, k)]
			if prev != nil {
				n.depCount.Add(1)
				prev.dependents = append(prev.dependents, n)
			}
			for _, dep := range a.DirectDeps {
				depNode := nodes[nodeKey(dep, k)]
				n.depCount.Add(1)
				depNode.dependents = append(depNode.dependents, n)
			}
			prev = n
		}
	}

	return nodes
}

func collectArtifacts(root *artifact.Artifact) []*artifact.Artifact {
	seen := make(map[string]bool)
	var out []*artifact.Artifact
	var walk func(a *artifact.Artifact)
	walk = func(a *artifact.Artifact) {
		key := a.Coords.SanitizedKey()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, a)
		for _, dep := range a.DirectDeps {
			walk(dep)
		}
	}
	walk(root)
	return out
}
