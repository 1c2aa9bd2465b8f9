package stepworkers

import "github.com/vk/buildgraphgo/internal/cachelayout"

// runHash always succeeds: by the time Run reaches here, a.Hash() has
// already been computed (it's how the slot itself was located). Writing
// the marker is the Scheduler's job, applied uniformly after every
// worker returns (spec.md §4.5 item 2).
func (t *Tools) runHash(slot cachelayout.Slot) (cachelayout.Marker, error) {
	return cachelayout.Success, nil
}
