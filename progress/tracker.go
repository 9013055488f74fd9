package progress

import (
	"sync"
	"time"
)

// Tracker counts delivered batches and derives rate and ETA.
// All methods are safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	total      int
	done       int
	startTime  time.Time
	lastUpdate time.Time
}

// Snapshot is an immutable copy of a Tracker's state.
type Snapshot struct {
	Total           int           `json:"total"`
	Done            int           `json:"done"`
	PercentComplete float64       `json:"percent_complete"`
	StartTime       time.Time     `json:"start_time"`
	LastUpdateTime  time.Time     `json:"last_update_time"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	PerSecond       float64       `json:"per_second"`
	Remaining       time.Duration `json:"remaining_ns"`
}

// NewTracker creates a tracker expecting total increments.
func NewTracker(total int) *Tracker {
	now := time.Now()
	return &Tracker{total: total, startTime: now, lastUpdate: now}
}

// Increment records n more delivered batches.
func (t *Tracker) Increment(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done += n
	t.lastUpdate = time.Now()
}

// Done returns the number of increments recorded.
func (t *Tracker) Done() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.done
}

// IsComplete reports whether every expected increment has been recorded.
func (t *Tracker) IsComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.done >= t.total
}

// PercentComplete returns the completion percentage (0-100).
func (t *Tracker) PercentComplete() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.percentUnsafe()
}

// Snapshot returns a consistent copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	elapsed := time.Since(t.startTime)
	s := Snapshot{
		Total:           t.total,
		Done:            t.done,
		PercentComplete: t.percentUnsafe(),
		StartTime:       t.startTime,
		LastUpdateTime:  t.lastUpdate,
		Elapsed:         elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.PerSecond = float64(t.done) / secs
	}
	if t.done > 0 && t.done < t.total {
		s.Remaining = elapsed / time.Duration(t.done) * time.Duration(t.total-t.done)
	}
	return s
}

// Reset zeroes the counters and restarts the clock.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.done = 0
	t.startTime = now
	t.lastUpdate = now
}

// percentUnsafe must be called with the lock held.
func (t *Tracker) percentUnsafe() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.done) / float64(t.total) * percentMultiplier
}
