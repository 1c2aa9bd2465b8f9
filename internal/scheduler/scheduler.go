// Package scheduler drives a resolved artifact graph through the
// eight-step pipeline concurrently, honoring per-step DAG ordering,
// cache reuse, single-writer-per-slot locking, and first-failure
// cancellation (spec.md §4.5).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/progress"
	"github.com/vk/buildgraphgo/internal/step"
	"github.com/vk/buildgraphgo/internal/stepworkers"
	"github.com/vk/buildgraphgo/internal/transforms"
)

// Scheduler drives a single build request's root artifact to
// completion, per spec.md §4.5.
type Scheduler struct {
	Tools    *stepworkers.Tools
	Progress progress.Sink
	Logger   *slog.Logger

	nodes map[string]*node
	wg    sync.WaitGroup
}

// Run builds the (artifact, step) graph rooted at root and drives it to
// completion. Readiness is bounded by root.Request.Executor, a
// caller-supplied *semaphore.Weighted: per spec.md §9 ("Thread pool
// ownership"), the Scheduler only acquires and releases permits on it —
// it never constructs or shuts the pool down, so one Executor may be
// shared across several builds. Run returns the first real failure's
// cause, or nil if the root artifact reached Success/Skipped for the
// terminal step.
func (s *Scheduler) Run(ctx context.Context, root *artifact.Artifact) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sem := root.Request.ExecutorOrDefault()

	s.nodes = buildNodes(root)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.wg.Add(len(s.nodes))
	for _, n := range s.nodes {
		if n.depCount.Load() == 0 {
			go s.runNode(runCtx, sem, n, cancel, logger)
		}
	}

	s.wg.Wait()

	terminal := s.nodes[nodeKey(root, step.OutputAssembler)]
	if terminal.state.Load() == int32(failed) {
		if cancelled, cause := root.Request.Cancelled(); cancelled {
			return cause
		}
		return terminal.err
	}
	return nil
}

// runNode acquires one permit from sem, executes n, releases the permit,
// and fans out to every dependent whose depCount just reached zero —
// spawning its own goroutine rather than queuing onto a fixed worker
// loop, so the semaphore (not a goroutine count) is what bounds
// concurrency.
func (s *Scheduler) runNode(ctx context.Context, sem *semaphore.Weighted, n *node, cancel context.CancelFunc, logger *slog.Logger) {
	if ctx.Err() != nil {
		s.skip(n, ctx.Err())
		return
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		s.skip(n, ctx.Err())
		return
	}

	if ctx.Err() != nil {
		sem.Release(1)
		s.skip(n, ctx.Err())
		return
	}

	n.state.Store(int32(running))
	marker, err := s.executeNode(ctx, n, logger)
	sem.Release(1)

	if err != nil {
		n.state.Store(int32(failed))
		n.err = err
		logger.Error("step failed", "artifact", n.artifact.Coords.String(), "step", n.step.String(), "error", err)
		cancel()
		s.skipDependents(n, err)
		s.wg.Done()
		return
	}

	s.reportProgress(n, marker)
	n.state.Store(int32(done))
	for _, dep := range n.dependents {
		if dep.depCount.Add(-1) == 0 {
			go s.runNode(ctx, sem, dep, cancel, logger)
		}
	}
	s.wg.Done()
}

func (s *Scheduler) reportProgress(n *node, marker cachelayout.Marker) {
	sink := s.Progress
	if sink == nil {
		sink = progress.Noop{}
	}
	sink.Report(progress.Event{Artifact: n.artifact.Coords.String(), Step: n.step.String(), Marker: marker})
}

// skipDependents marks every transitive dependent of n as failed,
// draining the wait group for each, exactly once per node — mirroring
// the upstream-failure propagation of a classic worker-pool DAG runner.
func (s *Scheduler) skipDependents(n *node, cause error) {
	for _, dep := range n.dependents {
		dep.skipOnce.Do(func() {
			dep.state.Store(int32(failed))
			dep.err = fmt.Errorf("skipped: upstream failure of %s/%s: %w", n.artifact.Coords.String(), n.step.String(), cause)
			s.wg.Done()
			s.skipDependents(dep, cause)
		})
	}
}

func (s *Scheduler) skip(n *node, cause error) {
	n.skipOnce.Do(func() {
		n.state.Store(int32(failed))
		n.err = cause
		s.wg.Done()
		s.skipDependents(n, cause)
	})
}

// executeNode performs the cache lookup, single-writer lock, worker
// invocation, and marker write for one (artifact, step) node, per
// spec.md §4.5 items 2–3. Marker writing happens here, uniformly across
// every step, because the Scheduler — not the worker — owns the slot's
// result file.
func (s *Scheduler) executeNode(ctx context.Context, n *node, logger *slog.Logger) (cachelayout.Marker, error) {
	a := n.artifact
	hashHex, err := a.Hash()
	if err != nil {
		// The slot directory is keyed by the hash we just failed to
		// compute, so it can't exist yet — spec.md §7's special case for
		// Hash-step failures before the slot exists.
		if _, logErr := cachelayout.WriteFallbackLog(s.Tools.BaseCacheDir, a.Coords.String(), []string{err.Error()}, time.Now()); logErr != nil {
			logger.Error("scheduler: failed to write fallback log", "artifact", a.Coords.String(), "error", logErr)
		}
		return "", err
	}
	slot := cachelayout.SlotFor(s.Tools.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, n.step)

	if marker, ok, err := slot.ReadMarker(); err != nil {
		return "", err
	} else if ok && marker != cachelayout.Failed {
		return marker, nil
	}

	acquired, err := slot.AcquireLock()
	if err != nil {
		return "", err
	}
	if !acquired {
		// Another worker (in this process or another) holds the slot.
		// The marker is re-read once, immediately, with no wait for the
		// lock to be released: a marker already written is returned as
		// this step's result, and if there is none yet the step fails.
		if marker, ok, err := slot.ReadMarker(); err == nil && ok {
			return marker, nil
		}
		return "", fmt.Errorf("scheduler: slot %s locked by another writer and produced no marker", slot.Path())
	}
	defer slot.Release()

	if cancelled, cause := a.Request.Cancelled(); cancelled {
		return cachelayout.Aborted, cause
	}

	marker, err := s.Tools.Run(ctx, a, n.step, logger)
	if err != nil {
		a.Request.Cancel(err)
		if writeErr := slot.WriteMarker(cachelayout.Failed); writeErr != nil {
			return "", writeErr
		}
		return cachelayout.Failed, err
	}

	if n.step == step.CompileGwtIncompatibleStripped && marker.HasOutput() {
		// Shade must succeed before CompileGwtIncompatibleStripped is
		// committed as Success: otherwise a shade failure would leave this
		// slot cached as Success, and a re-run would never revisit shade.
		if shadeErr := s.runShade(a, hashHex); shadeErr != nil {
			a.Request.Cancel(shadeErr)
			if writeErr := slot.WriteMarker(cachelayout.Failed); writeErr != nil {
				return "", writeErr
			}
			return cachelayout.Failed, shadeErr
		}
	}

	if writeErr := slot.WriteMarker(marker); writeErr != nil {
		return "", writeErr
	}

	return marker, nil
}

// runShade applies the package-rename transform over a's
// compile-gwt-incompatible-stripped output, per spec.md §4.6.2. Its
// result is written to a named slot outside the eight-step pipeline
// (internal/cachelayout.ShadeOutputDirName), which the classpath
// assembly rule consults ahead of the stripped-compile output.
func (s *Scheduler) runShade(a *artifact.Artifact, hashHex string) error {
	strippedCompiled := cachelayout.SlotFor(s.Tools.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, step.CompileGwtIncompatibleStripped).OutputDir()
	shadeSlot := cachelayout.NamedSlot(s.Tools.BaseCacheDir, a.Coords.SanitizedKey(), hashHex, cachelayout.ShadeOutputDirName)

	marker, err := transforms.Shade(strippedCompiled, a.ShadeMappings, shadeSlot.OutputDir(), a.ProcessingSkipped)
	if err != nil {
		return err
	}
	return shadeSlot.WriteMarker(marker)
}
