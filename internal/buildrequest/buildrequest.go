// Package buildrequest defines BuildRequest, the process-wide
// configuration shared by every artifact and every step worker in a
// single build.
package buildrequest

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ClasspathScope mirrors Maven's classpath scope filter: which
// dependencies are visible on the compiler classpath.
type ClasspathScope string

const (
	ScopeCompile  ClasspathScope = "COMPILE"
	ScopeRuntime  ClasspathScope = "RUNTIME"
	ScopeTest     ClasspathScope = "TEST"
	ScopeProvided ClasspathScope = "PROVIDED"
)

// OptimizationLevel mirrors the closure-compiler optimization levels.
type OptimizationLevel string

const (
	OptimizationBundle   OptimizationLevel = "BUNDLE"
	OptimizationWhitespace OptimizationLevel = "WHITESPACE_ONLY"
	OptimizationSimple   OptimizationLevel = "SIMPLE"
	OptimizationAdvanced OptimizationLevel = "ADVANCED"
)

// FormattingOption is a single on/off closure-compiler output-formatting
// flag, e.g. "PRETTY_PRINT" or "SINGLE_QUOTES".
type FormattingOption string

// Request is the concrete BuildRequest: immutable after construction
// except for the cancellation cell, which is monotone (set-once, first
// cause wins).
type Request struct {
	BaseCacheDir  string
	TargetDir     string
	ClasspathScope ClasspathScope
	Optimization  OptimizationLevel
	LanguageOut   string

	// Defines and Externs are sorted (key, value) / plain string lists —
	// the caller (internal/buildconfig) is responsible for sorting them
	// before they reach here, since they are fed verbatim into the
	// artifact hash (spec.md §4.2 item 1).
	Defines            [][2]string
	Externs            []string
	FormattingOptions  []FormattingOption

	// TestID, when non-empty, causes every artifact hash in this request
	// to differ from an otherwise-identical non-test request (spec.md
	// §4.2 item 6).
	TestID string

	WorkerCount int
	Logger      *slog.Logger

	// Executor bounds how many (artifact, step) tasks run at once across
	// this request, and any other request sharing the same instance.
	// Per spec.md §9 ("Thread pool ownership"), the scheduler only
	// acquires and releases permits here — it never constructs or closes
	// this pool itself, so a caller running several builds back-to-back
	// may hand them all the same Executor.
	Executor *semaphore.Weighted

	cancelOnce sync.Once
	cancelErr  error
	cancelMu   sync.RWMutex
}

// ExecutorOrDefault returns r.Executor, or a single-permit fallback
// semaphore if the caller never supplied one.
func (r *Request) ExecutorOrDefault() *semaphore.Weighted {
	if r.Executor != nil {
		return r.Executor
	}
	return semaphore.NewWeighted(1)
}

// Cancel marks the request cancelled, capturing cause as the first and
// permanent cancellation reason. Subsequent calls are no-ops: Cancel is
// monotone.
func (r *Request) Cancel(cause error) {
	r.cancelOnce.Do(func() {
		r.cancelMu.Lock()
		r.cancelErr = cause
		r.cancelMu.Unlock()
	})
}

// Cancelled reports whether Cancel has been called, and if so, the first
// recorded cause.
func (r *Request) Cancelled() (bool, error) {
	r.cancelMu.RLock()
	defer r.cancelMu.RUnlock()
	return r.cancelErr != nil, r.cancelErr
}

// FormattingOptionsStrings returns FormattingOptions as plain strings, for
// hashing and for passing to external-tool adapters.
func (r *Request) FormattingOptionsStrings() []string {
	out := make([]string, len(r.FormattingOptions))
	for i, f := range r.FormattingOptions {
		out[i] = string(f)
	}
	return out
}
