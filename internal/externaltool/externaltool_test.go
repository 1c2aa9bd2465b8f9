package externaltool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/buildgraphgo/internal/buildrequest"
)

func TestHasErrorsIgnoresNonErrorSeverity(t *testing.T) {
	r := Result{
		Diagnostics: []buildrequest.Diagnostic{
			{Severity: buildrequest.SeverityInfo, Message: "note: compiling"},
			{Severity: buildrequest.SeverityWarning, Message: "deprecated"},
		},
	}
	assert.False(t, r.HasErrors())
}

func TestHasErrorsDetectsErrorSeverity(t *testing.T) {
	r := Result{
		Diagnostics: []buildrequest.Diagnostic{
			{Severity: buildrequest.SeverityInfo, Message: "note"},
			{Severity: buildrequest.SeverityError, Message: "cannot find symbol"},
		},
	}
	assert.True(t, r.HasErrors())
}

func TestHasErrorsOnEmptyDiagnostics(t *testing.T) {
	assert.False(t, Result{Success: true}.HasErrors())
}
