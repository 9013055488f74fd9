package progress

import (
	"sync"

	"github.com/kbukum/batchkit/logger"
)

// LogReporter logs progress every `every` increments and once on completion.
type LogReporter struct {
	mu     sync.Mutex
	log    *logger.Logger
	total  int
	every  int
	done   int
	logged int
}

// NewLogReporter creates a reporter that logs through log.
// every <= 0 logs roughly every 10%.
func NewLogReporter(log *logger.Logger, total, every int) *LogReporter {
	if every <= 0 {
		every = max(1, total/10)
	}
	return &LogReporter{log: log, total: total, every: every}
}

// Increment records n delivered batches.
func (r *LogReporter) Increment(n int) {
	r.mu.Lock()
	r.done += n
	done := r.done
	emit := done-r.logged >= r.every || done == r.total
	if emit {
		r.logged = done
	}
	r.mu.Unlock()

	if emit {
		r.log.Info("progress", logger.Fields(
			"done", done,
			"total", r.total,
			"percent", float64(done)/float64(max(1, r.total))*percentMultiplier,
		))
	}
}
