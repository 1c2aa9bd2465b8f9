// Package progress defines the live-progress seam the Scheduler reports
// through: one Event per (artifact, step) marker it writes. This is
// ambient, not part of spec.md's Core — a build runs identically with no
// Sink configured at all.
package progress

import "github.com/vk/buildgraphgo/internal/cachelayout"

// Event is one StepResult transition, as the Scheduler observes it the
// moment it writes a slot's marker.
type Event struct {
	Artifact string
	Step     string
	Marker   cachelayout.Marker
}

// Sink receives Event notifications. A Sink must not block the caller
// for long: the Scheduler treats every Report call as fire-and-forget
// and never fails a build because a Sink is slow or unreachable.
type Sink interface {
	Report(Event)
}

// Noop discards every event. It is the Scheduler's default when no Sink
// is configured.
type Noop struct{}

// Report implements Sink.
func (Noop) Report(Event) {}
