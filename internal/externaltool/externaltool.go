// Package externaltool defines the adapter interfaces that let step
// workers treat javac, the annotation stripper, the Java-to-JavaScript
// transpiler, and the closure optimizer as opaque, swappable tools.
package externaltool

import (
	"context"

	"github.com/vk/buildgraphgo/internal/buildrequest"
)

// Result is what one tool invocation reports back: whether it succeeded,
// and every diagnostic line it produced, severity-tagged.
type Result struct {
	Success     bool
	Diagnostics []buildrequest.Diagnostic
}

// HasErrors reports whether any diagnostic carries error severity,
// regardless of the Success flag a particular adapter returned.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == buildrequest.SeverityError {
			return true
		}
	}
	return false
}

// CompileInput describes one javac invocation.
type CompileInput struct {
	SourceRoots []string
	Classpath   []string // ordered; earlier entries shadow later ones
	OutputDir   string
}

// Compiler adapts a Java compiler. Invoke must write class files only
// under input.OutputDir.
type Compiler interface {
	Invoke(ctx context.Context, input CompileInput) (Result, error)
}

// StripInput describes one annotation-stripper invocation over an
// already-copied source tree (see internal/transforms.Strip).
type StripInput struct {
	SourceDir string
	OutputDir string
}

// Stripper adapts the @GwtIncompatible-annotation stripping tool.
type Stripper interface {
	Invoke(ctx context.Context, input StripInput) (Result, error)
}

// TranspileInput describes one Java/native-JS-to-JavaScript transpiler
// invocation. NativeJSFiles are .native.js sources that accompany a
// .java file of the same base name. Plain .js files have no field here:
// the caller copies them verbatim instead of passing them to the tool.
type TranspileInput struct {
	JavaFiles     []string
	NativeJSFiles []string
	Classpath     []string
	OutputDir     string
}

// Transpiler adapts the Java-to-JavaScript transpiler.
type Transpiler interface {
	Invoke(ctx context.Context, input TranspileInput) (Result, error)
}

// ClosureInput describes one closure-compiler invocation.
type ClosureInput struct {
	EntryPoints       []string
	SourceDirs        []string
	Externs           []string
	OptimizationLevel buildrequest.OptimizationLevel
	LanguageOut       string
	FormattingOptions []string
	OutputDir         string
}

// ClosureOptimizer adapts the closure-compiler bundling/optimization tool.
type ClosureOptimizer interface {
	Invoke(ctx context.Context, input ClosureInput) (Result, error)
}
