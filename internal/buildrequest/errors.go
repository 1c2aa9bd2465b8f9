package buildrequest

import (
	"fmt"

	"github.com/agext/levenshtein"
)

// Severity tags a single diagnostic message produced by an external tool.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Diagnostic is one line of tool output, tagged with its severity.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// GraphError reports a structural problem with the dependency graph: a
// cycle, an unresolved coordinate, or a malformed shade mapping.
type GraphError struct {
	Reason      string
	Suggestions []string // ranked nearest-match candidates, if applicable
}

func (e *GraphError) Error() string {
	if len(e.Suggestions) == 0 {
		return "graph error: " + e.Reason
	}
	return fmt.Sprintf("graph error: %s (did you mean: %s?)", e.Reason, e.Suggestions[0])
}

// NewUnresolvedCoordinateError builds a GraphError for a reference to a
// coordinate absent from the graph, ranking known to suggest the closest
// matches by edit distance.
func NewUnresolvedCoordinateError(requested string, known []string) *GraphError {
	type scored struct {
		name string
		dist int
	}
	var ranked []scored
	for _, k := range known {
		ranked = append(ranked, scored{k, levenshtein.Distance(requested, k, nil)})
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j-1].dist > ranked[j].dist; j-- {
			ranked[j-1], ranked[j] = ranked[j], ranked[j-1]
		}
	}
	limit := 3
	if len(ranked) < limit {
		limit = len(ranked)
	}
	suggestions := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		suggestions = append(suggestions, ranked[i].name)
	}
	return &GraphError{
		Reason:      fmt.Sprintf("unresolved coordinate %q", requested),
		Suggestions: suggestions,
	}
}

// IoError wraps a filesystem operation failure with path context.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ToolError reports that an external tool returned error-severity
// diagnostics or a non-zero exit.
type ToolError struct {
	Tool        string
	Diagnostics []Diagnostic
}

func (e *ToolError) Error() string {
	errCount := 0
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			errCount++
		}
	}
	return fmt.Sprintf("tool error: %s reported %d error diagnostic(s)", e.Tool, errCount)
}

// CancelledError reports that the build was cancelled because another
// task already failed.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("build cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// InternalError reports an invariant violation: a Success marker without
// an output/ directory, two concurrent lock holders for one slot, etc.
// It is never recoverable — callers should abort the entire build.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Reason
}
