// Package step enumerates the fixed pipeline of build steps and the
// per-step skip predicates that decide whether a given artifact kind
// actually runs a step or is trivially marked successful.
package step

// Kind is one stage of the eight-step pipeline. Steps always execute in
// Kind order; Next reports the successor, if any.
type Kind int

const (
	Hash Kind = iota
	Unpack
	Compile
	GwtIncompatibleStrip
	CompileGwtIncompatibleStripped
	Transpile
	ClosureCompiler
	OutputAssembler

	numKinds
)

// All is every Kind in pipeline order.
var All = []Kind{
	Hash, Unpack, Compile, GwtIncompatibleStrip, CompileGwtIncompatibleStripped,
	Transpile, ClosureCompiler, OutputAssembler,
}

// First is the step every artifact starts at.
const First = Hash

var directoryNames = [numKinds]string{
	Hash:                           "0-hash",
	Unpack:                         "1-unpack",
	Compile:                        "2-javac-compiled-source",
	GwtIncompatibleStrip:           "3-gwt-incompatible-stripped-source",
	CompileGwtIncompatibleStripped: "4-javac-compiled-gwt-incompatible-stripped-source",
	Transpile:                      "5-transpiled-java-to-javascript",
	ClosureCompiler:                "6-closure-compiler-output",
	OutputAssembler:                "7-output-assembler",
}

var names = [numKinds]string{
	Hash:                           "HASH",
	Unpack:                         "UNPACK",
	Compile:                        "COMPILE",
	GwtIncompatibleStrip:           "GWT_INCOMPATIBLE_STRIP",
	CompileGwtIncompatibleStripped: "COMPILE_GWT_INCOMPATIBLE_STRIPPED",
	Transpile:                      "TRANSPILE",
	ClosureCompiler:                "CLOSURE_COMPILER",
	OutputAssembler:                "OUTPUT_ASSEMBLER",
}

// DirectoryName returns the on-disk slot subdirectory name for k, e.g.
// "0-hash". Every cache slot lives at <baseCacheDir>/<artifact
// key>/<DirectoryName>.
func (k Kind) DirectoryName() string { return directoryNames[k] }

// String returns k's canonical enum-style name, used in log lines and
// diagnostics.
func (k Kind) String() string { return names[k] }

// skipBootstrapOrJre reports, per step, whether JavacBootstrap/JreBinary
// artifacts skip this step outright (treated as an immediate success).
// Only Hash runs for every artifact kind unconditionally; every other
// step assumes the bootstrap/JRE artifact already arrives pre-built.
var skipBootstrapOrJre = [numKinds]bool{
	Hash:                           false,
	Unpack:                         true,
	Compile:                        true,
	GwtIncompatibleStrip:           true,
	CompileGwtIncompatibleStripped: true,
	Transpile:                      true,
	ClosureCompiler:                true,
	OutputAssembler:                true,
}

// skipDependency reports, per step, whether Dependency-kind artifacts
// skip this step. Only the last two steps (closure compilation and
// output assembly) are root-only; every dependency still needs its own
// compiled/transpiled output to sit on downstream classpaths.
var skipDependency = [numKinds]bool{
	Hash:                           false,
	Unpack:                         false,
	Compile:                        false,
	GwtIncompatibleStrip:           false,
	CompileGwtIncompatibleStripped: false,
	Transpile:                      false,
	ClosureCompiler:                true,
	OutputAssembler:                true,
}

// SkipBootstrapOrJre reports whether k is a no-op for bootstrap/JRE
// artifacts.
func (k Kind) SkipBootstrapOrJre() bool { return skipBootstrapOrJre[k] }

// SkipDependency reports whether k is a no-op for Dependency-kind
// artifacts.
func (k Kind) SkipDependency() bool { return skipDependency[k] }

// Next returns the step that follows k, and false if k is the last step
// in the pipeline.
func (k Kind) Next() (Kind, bool) {
	if k == OutputAssembler {
		return 0, false
	}
	return k + 1, true
}
