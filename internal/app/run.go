package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gookit/color"
	"golang.org/x/sync/semaphore"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/buildconfig"
	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/coords"
	"github.com/vk/buildgraphgo/internal/ctxlog"
	execadapter "github.com/vk/buildgraphgo/internal/externaltool/exec"
	"github.com/vk/buildgraphgo/internal/progress/wsserver"
	"github.com/vk/buildgraphgo/internal/resolver"
	"github.com/vk/buildgraphgo/internal/resolver/httprepo"
	"github.com/vk/buildgraphgo/internal/resolver/static"
	"github.com/vk/buildgraphgo/internal/scheduler"
	"github.com/vk/buildgraphgo/internal/stepworkers"
)

// Run loads the build configuration, resolves the root artifact's
// dependency graph, and drives it through the Scheduler to completion.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("app run started", "root", a.config.RootCoords)

	req, err := buildconfig.Load(a.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading build configuration: %w", err)
	}
	if a.config.BaseCacheDir != "" {
		req.BaseCacheDir = a.config.BaseCacheDir
	}
	if a.config.TargetDir != "" {
		req.TargetDir = a.config.TargetDir
	}
	req.Logger = a.logger

	workerCount := a.config.WorkerCount
	if workerCount <= 0 {
		workerCount = 4
	}
	req.WorkerCount = workerCount
	req.Executor = semaphore.NewWeighted(int64(workerCount))

	root, err := coords.Parse(a.config.RootCoords)
	if err != nil {
		return fmt.Errorf("parsing root coordinate %q: %w", a.config.RootCoords, err)
	}

	res, err := a.buildResolver(req)
	if err != nil {
		return err
	}

	g, err := res.Resolve(ctx, root, req.ClasspathScope)
	if err != nil {
		return fmt.Errorf("resolving artifact graph: %w", err)
	}
	if err := g.DetectCycles(); err != nil {
		return err
	}

	rootArtifact, err := g.Lookup(root.String())
	if err != nil {
		return err
	}

	tools := &stepworkers.Tools{
		Compiler:     execadapter.Compiler{},
		Stripper:     execadapter.Stripper{},
		Transpiler:   execadapter.Transpiler{},
		Closure:      execadapter.ClosureOptimizer{},
		BaseCacheDir: req.BaseCacheDir,
	}
	sched := &scheduler.Scheduler{Tools: tools, Logger: a.logger}

	if a.config.ProgressPort > 0 {
		stop := a.startProgressServer(sched)
		defer stop()
	}

	buildErr := sched.Run(ctx, rootArtifact)
	a.reportResult(rootArtifact, buildErr)
	return buildErr
}

// buildResolver picks the static or httprepo resolver.Resolver
// implementation based on which of -manifest/-resolver-url the caller
// configured. internal/cli.Parse already rejects the case where neither
// is set.
func (a *App) buildResolver(req *buildrequest.Request) (resolver.Resolver, error) {
	switch {
	case a.config.ManifestPath != "":
		manifests, err := loadManifests(a.config.ManifestPath)
		if err != nil {
			return nil, err
		}
		return &static.Resolver{Manifests: manifests, Request: req}, nil
	case a.config.ResolverBaseURL != "":
		return &httprepo.Resolver{
			BaseURL:         a.config.ResolverBaseURL,
			ArchiveCacheDir: a.config.ArchiveCacheDir,
			Request:         req,
		}, nil
	default:
		return nil, fmt.Errorf("app: no resolver configured (set -manifest or -resolver-url)")
	}
}

func loadManifests(path string) (map[string]resolver.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file %s: %w", path, err)
	}
	var list []resolver.Manifest
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing manifest file %s: %w", path, err)
	}
	out := make(map[string]resolver.Manifest, len(list))
	for _, m := range list {
		out[m.Coords] = m
	}
	return out, nil
}

// startProgressServer wires a wsserver.Hub into sched.Progress and
// starts an HTTP server exposing it at /progress. The returned func
// shuts the server down; progress-broadcast failures never fail the
// build (spec.md §5), so this only ever logs.
func (a *App) startProgressServer(sched *scheduler.Scheduler) func() {
	hub := wsserver.NewHub()
	hub.Logger = a.logger
	sched.Progress = hub

	mux := http.NewServeMux()
	mux.HandleFunc("/progress", hub.ServeWS)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", a.config.ProgressPort), Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("progress dashboard failed", "error", err)
		}
	}()
	a.logger.Info("progress dashboard listening", "port", a.config.ProgressPort)

	return func() { _ = srv.Close() }
}

// reportResult prints a colored summary line for the build's terminal
// outcome.
func (a *App) reportResult(root *artifact.Artifact, buildErr error) {
	if buildErr != nil {
		fmt.Fprintln(a.outW, color.Error.Sprintf("build failed for %s: %v", root.Coords.String(), buildErr))
		return
	}
	fmt.Fprintln(a.outW, color.Success.Sprintf("build succeeded for %s", root.Coords.String()))
}
