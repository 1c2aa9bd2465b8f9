package cachelayout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildgraphgo/internal/step"
)

func TestReadMarkerOnUnbuiltSlotIsNotFound(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Hash)
	_, ok, err := slot.ReadMarker()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteMarkerThenReadRoundTrips(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Compile)

	require.NoError(t, slot.WriteMarker(Success))
	m, ok, err := slot.ReadMarker()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Success, m)
}

func TestWriteMarkerReplacesPriorMarker(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Compile)

	require.NoError(t, slot.WriteMarker(Failed))
	require.NoError(t, slot.WriteMarker(Success))

	entries, err := os.ReadDir(slot.Path())
	require.NoError(t, err)
	var markerFiles int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == "" && e.Name() != lockFileName && e.Name() != logFileName {
			markerFiles++
		}
	}
	m, ok, err := slot.ReadMarker()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Success, m)
}

func TestHasOutputOnlyForSuccessOrAborted(t *testing.T) {
	assert.True(t, Success.HasOutput())
	assert.True(t, Aborted.HasOutput())
	assert.False(t, Failed.HasOutput())
	assert.False(t, Skipped.HasOutput())
}

func TestAcquireLockIsSingleWriter(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Unpack)

	ok1, err := slot.AcquireLock()
	require.NoError(t, err)
	require.True(t, ok1)

	ok2, err := slot.AcquireLock()
	require.NoError(t, err)
	assert.False(t, ok2, "a second acquirer must not win the lock while the first holds it")

	require.NoError(t, slot.Release())

	ok3, err := slot.AcquireLock()
	require.NoError(t, err)
	assert.True(t, ok3, "lock must be acquirable again after Release")
}

func TestReleaseWithoutAcquireIsNotAnError(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Unpack)
	assert.NoError(t, slot.Release())
}

func TestWriteLogAndPaths(t *testing.T) {
	base := t.TempDir()
	slot := SlotFor(base, "com.example-foo-1.0", "deadbeef", step.Hash)
	require.NoError(t, slot.WriteLog([]string{"line one", "line two"}))

	got, err := os.ReadFile(slot.LogPath())
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(got))
	assert.Equal(t, filepath.Join(slot.Path(), "output"), slot.OutputDir())
}

func TestNamedSlotForShadeOutput(t *testing.T) {
	base := t.TempDir()
	slot := NamedSlot(base, "com.example-foo-1.0", "deadbeef", ShadeOutputDirName)
	assert.Equal(t, filepath.Join(base, "com.example-foo-1.0-deadbeef", "shade-output"), slot.Path())
}

func TestWriteFallbackLogIsTimestampedUnderBase(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 8, 6, 12, 30, 0, 0, time.UTC)

	path, err := WriteFallbackLog(base, "com.example:foo:1.0-HASH", []string{"boom"}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "com.example:foo:1.0-HASH-2026-08-06-12-30-00"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "boom\n", string(got))
}
