package exec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/externaltool"
)

func TestStripperInvokeCapturesStdoutAsInfoDiagnostics(t *testing.T) {
	s := Stripper{Executable: "echo"}
	out := filepath.Join(t.TempDir(), "out")

	res, err := s.Invoke(context.Background(), externaltool.StripInput{
		SourceDir: t.TempDir(),
		OutputDir: out,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "INFO", string(res.Diagnostics[0].Severity))
}

func TestStripperInvokeReportsNonZeroExitAsFailure(t *testing.T) {
	s := Stripper{Executable: "false"}
	out := filepath.Join(t.TempDir(), "out")

	res, err := s.Invoke(context.Background(), externaltool.StripInput{
		SourceDir: t.TempDir(),
		OutputDir: out,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.HasErrors())
}

func TestCompilerInvokeCreatesOutputDirBeforeRunning(t *testing.T) {
	c := Compiler{Executable: "true"}
	out := filepath.Join(t.TempDir(), "nested", "out")

	_, err := c.Invoke(context.Background(), externaltool.CompileInput{
		SourceRoots: []string{t.TempDir()},
		OutputDir:   out,
	})
	require.NoError(t, err)
}
