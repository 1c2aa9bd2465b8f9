// Package stepworkers implements the eight per-step workers of the
// build pipeline and the classpath-assembly rule they share. Each
// worker is stateless beyond the Tools it closes over; Tools.Run is the
// single entry point the Scheduler calls for every (artifact, step)
// pair, including the mechanical skip predicates from spec.md §4.3.
package stepworkers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/step"
)

// Tools bundles the four external-tool adapters and the cache base
// directory every worker needs.
type Tools struct {
	Compiler   externaltool.Compiler
	Stripper   externaltool.Stripper
	Transpiler externaltool.Transpiler
	Closure    externaltool.ClosureOptimizer

	BaseCacheDir string
}

// Run dispatches (a, k) to the right worker, first applying the
// skipForBootstrapOrJre / skipForNonRoot predicates from spec.md §4.3:
// when a predicate matches, the step records Success without invoking
// its worker.
func (t *Tools) Run(ctx context.Context, a *artifact.Artifact, k step.Kind, logger *slog.Logger) (cachelayout.Marker, error) {
	if a.Kind.IsBootstrapOrJre() && k.SkipBootstrapOrJre() {
		return cachelayout.Success, nil
	}
	if a.Kind != artifact.Root && k.SkipDependency() {
		return cachelayout.Success, nil
	}

	hashHex, err := a.Hash()
	if err != nil {
		return "", err
	}
	slot := t.slotFor(a, hashHex, k)

	switch k {
	case step.Hash:
		return t.runHash(slot)
	case step.Unpack:
		return t.runUnpack(a, slot)
	case step.Compile:
		return t.runCompile(ctx, a, hashHex, slot, logger)
	case step.GwtIncompatibleStrip:
		return t.runStrip(ctx, a, hashHex, slot, logger)
	case step.CompileGwtIncompatibleStripped:
		return t.runCompileStripped(ctx, a, hashHex, slot, logger)
	case step.Transpile:
		return t.runTranspile(ctx, a, hashHex, slot, logger)
	case step.ClosureCompiler:
		return t.runClosure(ctx, a, hashHex, slot, logger)
	case step.OutputAssembler:
		return t.runAssemble(a, slot)
	default:
		return "", fmt.Errorf("stepworkers: unknown step %v", k)
	}
}

func (t *Tools) slotFor(a *artifact.Artifact, hashHex string, k step.Kind) cachelayout.Slot {
	return cachelayout.SlotFor(t.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, k)
}

var (
	errCompileFailed   = fmt.Errorf("stepworkers: compiler reported error diagnostics")
	errTranspileFailed = fmt.Errorf("stepworkers: transpiler reported error diagnostics")
	errClosureFailed   = fmt.Errorf("stepworkers: closure optimizer reported error diagnostics")
)

// transitiveDeps returns every artifact transitively reachable from
// a.DirectDeps, deduplicated by coordinate key, in a stable
// depth-first order.
func transitiveDeps(a *artifact.Artifact) []*artifact.Artifact {
	seen := make(map[string]bool)
	var out []*artifact.Artifact
	var walk func(n *artifact.Artifact)
	walk = func(n *artifact.Artifact) {
		for _, dep := range n.DirectDeps {
			key := dep.Coords.SanitizedKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, dep)
			walk(dep)
		}
	}
	walk(a)
	return out
}
