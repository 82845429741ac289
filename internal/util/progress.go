package util

import (
	"fmt"
	"sync"
	"time"
)

// RunProgress tracks completed and failed chunks of an extraction run and
// estimates the remaining time from the average chunk duration.
type RunProgress struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	started   time.Time
	now       func() time.Time
}

// ProgressSnapshot is a point-in-time view of a RunProgress.
type ProgressSnapshot struct {
	Extracted     string        `json:"extracted,omitempty"`
	Failed        string        `json:"failed,omitempty"`
	Percentage    int32         `json:"percentage"`
	Elapsed       time.Duration `json:"elapsed"`
	TimeRemaining time.Duration `json:"time_remaining,omitempty"`
}

// NewRunProgress starts tracking a run of total chunks.
func NewRunProgress(total int) *RunProgress {
	return newRunProgress(total, time.Now)
}

func newRunProgress(total int, now func() time.Time) *RunProgress {
	return &RunProgress{total: total, started: now(), now: now}
}

// Done records one finished chunk.
func (p *RunProgress) Done(failed bool) ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if failed {
		p.failed++
	} else {
		p.completed++
	}
	return p.snapshotLocked()
}

// Snapshot returns the current progress without recording anything.
func (p *RunProgress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *RunProgress) snapshotLocked() ProgressSnapshot {
	s := ProgressSnapshot{Elapsed: p.now().Sub(p.started)}
	if p.total <= 0 {
		return s
	}

	if p.completed > 0 {
		s.Extracted = fmt.Sprintf("%d/%d", p.completed, p.total)
	}
	if p.failed > 0 {
		s.Failed = fmt.Sprintf("%d/%d", p.failed, p.total)
	}

	finished := min(p.completed+p.failed, p.total)
	s.Percentage = int32(finished * 100 / p.total)

	if finished > 0 && finished < p.total {
		perChunk := s.Elapsed / time.Duration(finished)
		s.TimeRemaining = perChunk * time.Duration(p.total-finished)
	}
	return s
}
