package stepworkers

import (
	"context"
	"log/slog"

	"github.com/vk/buildgraphgo/internal/artifact"
	"github.com/vk/buildgraphgo/internal/cachelayout"
	"github.com/vk/buildgraphgo/internal/transforms"
)

func (t *Tools) runStrip(ctx context.Context, a *artifact.Artifact, hashHex string, slot cachelayout.Slot, logger *slog.Logger) (cachelayout.Marker, error) {
	return transforms.Strip(ctx, t.unpackedSourceRoots(a, hashHex), slot.OutputDir(), t.Stripper, logger)
}
