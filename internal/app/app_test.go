package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppBuildsIsolatedLoggerAtConfiguredLevel(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(&out, &Config{LogLevel: "debug", LogFormat: "text"})

	a.Logger().Debug("hello")
	assert.Contains(t, out.String(), "hello")
	assert.True(t, a.Logger().Enabled(context.Background(), slog.LevelDebug))
}

func TestNewAppDefaultsToInfoLevelForUnknownLevel(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(&out, &Config{LogLevel: "bogus", LogFormat: "text"})

	assert.False(t, a.Logger().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, a.Logger().Enabled(context.Background(), slog.LevelInfo))
}
