// Package exec implements the externaltool adapters by shelling out to
// configured executables: javac, a GWT-incompatible stripper binary, a
// Java-to-JavaScript transpiler binary, and the closure-compiler jar.
package exec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/externaltool"
)

// run executes name with args, classifying each captured stdout line as
// Info severity and each stderr line as Error severity, matching
// SPEC_FULL.md §4.7. A non-zero exit with no error-severity diagnostic
// still produces one, so callers can rely on HasErrors alone.
func run(ctx context.Context, name string, args []string) (externaltool.Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var diags []buildrequest.Diagnostic
	diags = append(diags, linesToDiagnostics(stdout.Bytes(), buildrequest.SeverityInfo)...)
	diags = append(diags, linesToDiagnostics(stderr.Bytes(), buildrequest.SeverityError)...)

	if runErr != nil {
		if ctx.Err() != nil {
			return externaltool.Result{}, ctx.Err()
		}
		diags = append(diags, buildrequest.Diagnostic{
			Severity: buildrequest.SeverityError,
			Message:  fmt.Sprintf("%s: %v", name, runErr),
		})
		return externaltool.Result{Success: false, Diagnostics: diags}, nil
	}

	return externaltool.Result{Success: true, Diagnostics: diags}, nil
}

func linesToDiagnostics(content []byte, sev buildrequest.Severity) []buildrequest.Diagnostic {
	var diags []buildrequest.Diagnostic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		diags = append(diags, buildrequest.Diagnostic{Severity: sev, Message: line})
	}
	return diags
}

// Compiler shells out to a javac-compatible executable.
type Compiler struct {
	Executable string // defaults to "javac"
}

func (c Compiler) binary() string {
	if c.Executable == "" {
		return "javac"
	}
	return c.Executable
}

func (c Compiler) Invoke(ctx context.Context, input externaltool.CompileInput) (externaltool.Result, error) {
	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return externaltool.Result{}, err
	}
	args := []string{"-d", input.OutputDir}
	if len(input.Classpath) > 0 {
		args = append(args, "-cp", joinPath(input.Classpath))
	}
	args = append(args, input.SourceRoots...)
	return run(ctx, c.binary(), args)
}

// Stripper shells out to the configured @GwtIncompatible stripper binary.
type Stripper struct {
	Executable string
}

func (s Stripper) Invoke(ctx context.Context, input externaltool.StripInput) (externaltool.Result, error) {
	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return externaltool.Result{}, err
	}
	args := []string{"--source", input.SourceDir, "--output", input.OutputDir}
	return run(ctx, s.Executable, args)
}

// Transpiler shells out to the configured Java-to-JavaScript transpiler
// binary.
type Transpiler struct {
	Executable string
}

func (t Transpiler) Invoke(ctx context.Context, input externaltool.TranspileInput) (externaltool.Result, error) {
	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return externaltool.Result{}, err
	}
	args := []string{"-d", input.OutputDir}
	if len(input.Classpath) > 0 {
		args = append(args, "-cp", joinPath(input.Classpath))
	}
	args = append(args, input.JavaFiles...)
	args = append(args, input.NativeJSFiles...)
	return run(ctx, t.Executable, args)
}

// ClosureOptimizer shells out to the closure-compiler jar via "java -jar".
type ClosureOptimizer struct {
	JarPath    string
	JavaBinary string // defaults to "java"
}

func (c ClosureOptimizer) javaBinary() string {
	if c.JavaBinary == "" {
		return "java"
	}
	return c.JavaBinary
}

func (c ClosureOptimizer) Invoke(ctx context.Context, input externaltool.ClosureInput) (externaltool.Result, error) {
	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return externaltool.Result{}, err
	}
	args := []string{"-jar", c.JarPath,
		"--compilation_level", string(input.OptimizationLevel),
		"--js_output_file", input.OutputDir + "/output.js",
	}
	if input.LanguageOut != "" {
		args = append(args, "--language_out", input.LanguageOut)
	}
	for _, extern := range input.Externs {
		args = append(args, "--externs", extern)
	}
	for _, opt := range input.FormattingOptions {
		args = append(args, "--formatting", opt)
	}
	for _, dir := range input.SourceDirs {
		args = append(args, "--js", dir+"/**/*.js")
	}
	args = append(args, input.EntryPoints...)
	return run(ctx, c.javaBinary(), args)
}

func joinPath(entries []string) string {
	out := entries[0]
	for _, e := range entries[1:] {
		out += string(os.PathListSeparator) + e
	}
	return out
}
