// Package history keeps an operational log of tracker loads.
package history

import (
	"time"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/candidate"
)

// Run is one load attempt.
type Run struct {
	ID        string                     `json:"id"`
	StartedAt time.Time                  `json:"started_at"`
	Duration  time.Duration              `json:"duration"`
	Sources   []string                   `json:"sources"`
	Rows      int                        `json:"rows"`
	Counts    map[candidate.Category]int `json:"counts"`
	Checksum  string                     `json:"checksum"`
	Error     string                     `json:"error,omitempty"`
}

// OK reports whether the load succeeded.
func (r Run) OK() bool { return r.Error == "" }

// FromEvent converts a cache load event into a run.
func FromEvent(ev cache.LoadEvent) Run {
	run := Run{
		StartedAt: ev.Started.UTC(),
		Duration:  ev.Duration,
	}
	if ev.Err != nil {
		run.Error = ev.Err.Error()
	}
	if ds := ev.Dataset; ds != nil {
		run.Sources = ds.Sources
		run.Rows = len(ds.Records)
		run.Counts = ds.Counts()
		run.Checksum = ds.Checksum
	}
	return run
}
