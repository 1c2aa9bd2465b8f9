package scheduler

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/externaltool"
	"github.com/vk/buildgraphgo/internal/progress"
	"github.com/vk/buildgraphgo/internal/step"
	"github.com/vk/buildgraphgo/internal/stepworkers"
)

type recordingSink struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingSink) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type succeedingTool struct{ failOutput string }

func (s succeedingTool) mkdirAndResult(outputDir string) (externaltool.Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return externaltool.Result{}, err
	}
	if outputDir == s.failOutput {
		return externaltool.Result{Success: false, Diagnostics: []buildrequest.Diagnostic{
			{Severity: buildrequest.SeverityError, Message: "synthetic failure"},
		}}, nil
	}
	return externaltool.Result{Success: true}, nil
}

type fakeCompiler succeedingTool

func (f fakeCompiler) Invoke(ctx context.Context, in externaltool.CompileInput) (externaltool.Result, error) {
	return succeedingTool(f).mkdirAndResult(in.OutputDir)
}

type fakeStripper succeedingTool

func (f fakeStripper) Invoke(ctx context.Context, in externaltool.StripInput) (externaltool.Result, error) {
	return succeedingTool(f).mkdirAndResult(in.OutputDir)
}

type fakeTranspiler succeedingTool

func (f fakeTranspiler) Invoke(ctx context.Context, in externaltool.TranspileInput) (externaltool.Result, error) {
	return succeedingTool(f).mkdirAndResult(in.OutputDir)
}

type fakeClosure succeedingTool

func (f fakeClosure) Invoke(ctx context.Context, in externaltool.ClosureInput) (externaltool.Result, error) {
	result, err := succeedingTool(f).mkdirAndResult(in.OutputDir)
	if err != nil || !result.Success {
		return result, err
	}
	if err := os.WriteFile(filepath.Join(in.OutputDir, "bundle.js"), []byte("console.log(1);"), 0o644); err != nil {
		return externaltool.Result{}, err
	}
	return result, nil
}

func writeDepJar(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("com/example/Dep.java")
	require.NoError(t, err)
	_, err = entry.Write([]byte("package com.example; class Dep {}"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func newTestTools(baseCacheDir string) *stepworkers.Tools {
	return &stepworkers.Tools{
		Compiler:     fakeCompiler{},
		Stripper:     fakeStripper{},
		Transpiler:   fakeTranspiler{},
		Closure:      fakeClosure{},
		BaseCacheDir: baseCacheDir,
	}
}

func testRootArtifact(name, targetDir string) *artifact.Artifact {
	return &artifact.Artifact{
		Coords:      coords.New("com.example", name, "1.0", ""),
		Kind:        artifact.Root,
		SourceRoots: []string{},
		Request: &buildrequest.Request{
			TargetDir:      targetDir,
			Optimization:   buildrequest.OptimizationAdvanced,
			ClasspathScope: buildrequest.ScopeCompile,
			Executor:       semaphore.NewWeighted(4),
		},
	}
}

func TestRunDrivesSingleArtifactThroughTerminalStep(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()
	root := testRootArtifact("root", target)

	s := &Scheduler{Tools: newTestTools(base)}
	err := s.Run(context.Background(), root)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(target, "bundle.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);", string(got))

	hashHex, err := root.Hash()
	require.NoError(t, err)
	for _, k := range step.All {
		slot := cachelayout.SlotFor(base, root.Coords.SanitizedKey(), hashHex, k)
		marker, ok, err := slot.ReadMarker()
		require.NoError(t, err)
		require.True(t, ok, "missing marker for step %s", k)
		assert.NotEqual(t, cachelayout.Failed, marker)
	}
}

func TestRunSkipsReadyStepsAfterCacheHit(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()
	root := testRootArtifact("root", target)

	hashHex, err := root.Hash()
	require.NoError(t, err)
	hashSlot := cachelayout.SlotFor(base, root.Coords.SanitizedKey(), hashHex, step.Hash)
	require.NoError(t, hashSlot.WriteMarker(cachelayout.Success))

	s := &Scheduler{Tools: newTestTools(base)}
	err = s.Run(context.Background(), root)
	require.NoError(t, err)

	marker, ok, err := hashSlot.ReadMarker()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cachelayout.Success, marker)
}

func TestRunPropagatesCompileFailureToTerminalStep(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()
	root := testRootArtifact("root", target)

	hashHex, err := root.Hash()
	require.NoError(t, err)
	compileOutput := cachelayout.SlotFor(base, root.Coords.SanitizedKey(), hashHex, step.Compile).OutputDir()

	tools := newTestTools(base)
	tools.Compiler = fakeCompiler{failOutput: compileOutput}

	s := &Scheduler{Tools: tools}
	err = s.Run(context.Background(), root)
	require.Error(t, err)

	compileSlot := cachelayout.SlotFor(base, root.Coords.SanitizedKey(), hashHex, step.Compile)
	marker, ok, rerr := compileSlot.ReadMarker()
	require.NoError(t, rerr)
	require.True(t, ok)
	assert.Equal(t, cachelayout.Failed, marker)

	terminalSlot := cachelayout.SlotFor(base, root.Coords.SanitizedKey(), hashHex, step.OutputAssembler)
	_, ok, rerr = terminalSlot.ReadMarker()
	require.NoError(t, rerr)
	assert.False(t, ok, "terminal step must never run after an upstream failure")
}

func TestRunDrivesDependencyThroughEveryStep(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()

	depJar := filepath.Join(t.TempDir(), "dep.jar")
	writeDepJar(t, depJar)

	req := &buildrequest.Request{TargetDir: target, Executor: semaphore.NewWeighted(4)}
	dep := &artifact.Artifact{
		Coords:       coords.New("com.example", "dep", "1.0", ""),
		Kind:         artifact.Dependency,
		ArtifactFile: depJar,
		Request:      req,
	}
	root := &artifact.Artifact{
		Coords:      coords.New("com.example", "root", "1.0", ""),
		Kind:        artifact.Root,
		SourceRoots: []string{},
		DirectDeps:  []*artifact.Artifact{dep},
		Request:     req,
	}

	s := &Scheduler{Tools: newTestTools(base)}
	err := s.Run(context.Background(), root)
	require.NoError(t, err)

	depHash, err := dep.Hash()
	require.NoError(t, err)
	for _, k := range []step.Kind{step.Hash, step.Unpack, step.Compile, step.GwtIncompatibleStrip, step.CompileGwtIncompatibleStripped, step.Transpile} {
		slot := cachelayout.SlotFor(base, dep.Coords.SanitizedKey(), depHash, k)
		_, ok, rerr := slot.ReadMarker()
		require.NoError(t, rerr)
		assert.True(t, ok, "dependency must reach a marker for step %s", k)
	}

	// Dependency-kind artifacts skip Closure/Assemble per
	// step.SkipDependency: the predicate still records a Success marker,
	// it just never invokes the underlying worker.
	for _, k := range []step.Kind{step.ClosureCompiler, step.OutputAssembler} {
		slot := cachelayout.SlotFor(base, dep.Coords.SanitizedKey(), depHash, k)
		marker, ok, rerr := slot.ReadMarker()
		require.NoError(t, rerr)
		require.True(t, ok)
		assert.Equal(t, cachelayout.Success, marker)
	}
}

func TestRunReportsProgressForEveryNode(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()
	root := testRootArtifact("root", target)

	sink := &recordingSink{}
	s := &Scheduler{Tools: newTestTools(base), Progress: sink}
	err := s.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, len(step.All), sink.count(), "one progress event per step of the single artifact")
}
