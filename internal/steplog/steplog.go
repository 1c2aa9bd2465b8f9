// Package steplog implements the per-task line buffer described in
// spec.md §5 ("Logger: each task accumulates lines into a per-task
// buffer; the buffer is flushed to the step's log file on success and
// additionally echoed to the global sink on failure"), carrying over the
// original Maven plugin's J2clLinePrinter discipline (spec.md §10 item 2).
package steplog

import (
	"fmt"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/cachelayout"
)

// Buffer accumulates one step's output lines in order.
type Buffer struct {
	lines []string
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// Append adds one line.
func (b *Buffer) Append(line string) {
	b.lines = append(b.lines, line)
}

// AppendDiagnostics adds one line per diagnostic, severity-tagged.
func (b *Buffer) AppendDiagnostics(diags []buildrequest.Diagnostic) {
	for _, d := range diags {
		b.Append(fmt.Sprintf("[%s] %s", d.Severity, d.Message))
	}
}

// Lines returns the accumulated lines.
func (b *Buffer) Lines() []string { return b.lines }

// Flush writes the buffer to slot's log.txt unconditionally, and on
// failure additionally echoes every line to logger at Error level — the
// "flush on success, echo on failure" discipline.
func (b *Buffer) Flush(slot cachelayout.Slot, logger *slog.Logger, success bool) error {
	if err := slot.WriteLog(b.lines); err != nil {
		return err
	}
	if !success {
		for _, line := range b.lines {
			logger.Error(line)
		}
	}
	return nil
}
