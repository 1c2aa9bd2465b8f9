package steplog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/buildrequest"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/step"
)

func testSlot(t *testing.T) cachelayout.Slot {
	return cachelayout.SlotFor(t.TempDir(), "com.example-a-1.0", "deadbeef", step.Compile)
}

func TestFlushWritesLogOnSuccessWithoutEchoing(t *testing.T) {
	slot := testSlot(t)
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	b := New()
	b.AppendDiagnostics([]buildrequest.Diagnostic{
		{Severity: buildrequest.SeverityInfo, Message: "compiled 3 files"},
	})
	require.NoError(t, b.Flush(slot, logger, true))

	content, err := os.ReadFile(slot.LogPath())
	require.NoError(t, err)
	assert.Equal(t, "[INFO] compiled 3 files\n", string(content))
	assert.Empty(t, out.String(), "success must not echo to the global logger")
}

func TestFlushEchoesOnFailure(t *testing.T) {
	slot := testSlot(t)
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	b := New()
	b.AppendDiagnostics([]buildrequest.Diagnostic{
		{Severity: buildrequest.SeverityError, Message: "Foo.java:3: cannot find symbol"},
	})
	require.NoError(t, b.Flush(slot, logger, false))

	assert.FileExists(t, filepath.Join(slot.Path(), "log.txt"))
	assert.Contains(t, out.String(), "cannot find symbol")
}
