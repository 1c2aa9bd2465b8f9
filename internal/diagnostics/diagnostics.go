// Package diagnostics formats buildrequest.Diagnostic lines for terminal
// echo: wrapping long tool output to a fixed width so a wide compiler
// message doesn't blow past the user's terminal.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/vk/buildgraphgo/internal/buildrequest"
)

// DefaultWidth is used by Format when width is 0.
const DefaultWidth = 100

// Format renders one diagnostic as a severity-tagged, word-wrapped
// string, indenting every wrapped continuation line under the tag so
// multi-line messages stay visually grouped.
func Format(d buildrequest.Diagnostic, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	tag := fmt.Sprintf("[%s] ", d.Severity)
	wrapped := wordwrap.WrapString(d.Message, uint(width-len(tag)))

	lines := strings.Split(wrapped, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.Repeat(" ", len(tag)) + lines[i]
	}
	return tag + strings.Join(lines, "\n")
}

// FormatAll renders every diagnostic in order, one per Format call.
func FormatAll(diags []buildrequest.Diagnostic, width int) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = Format(d, width)
	}
	return out
}

// CountErrors reports how many diagnostics carry Error severity.
func CountErrors(diags []buildrequest.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == buildrequest.SeverityError {
			n++
		}
	}
	return n
}
