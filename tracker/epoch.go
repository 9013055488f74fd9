package tracker

import (
	"fmt"
	"iter"
	"time"

	"github.com/kbukum/batchkit/logger"
)

// Epochs yields count epochs, each with a fresh in-memory Tracker. After each
// completed epoch it reports "[e/N] - time: 1.23; loss: 0.123" through logf,
// or the global logger when logf is nil. Breaking out of the loop skips the
// report of the unfinished epoch.
func Epochs(count int, logf func(string)) iter.Seq2[int, *Tracker] {
	if logf == nil {
		logf = func(msg string) { logger.Info(msg) }
	}
	return func(yield func(int, *Tracker) bool) {
		for epoch := range count {
			t := New("")
			start := time.Now()
			if !yield(epoch, t) {
				return
			}
			msg := fmt.Sprintf("[%d/%d] - time: %.2f", epoch+1, count, time.Since(start).Seconds())
			if summary := t.Summary(3); summary != "" {
				msg += "; " + summary
			}
			logf(msg)
		}
	}
}
