// Package progress provides fire-and-forget progress reporters for batch
// pipelines.
//
// A Reporter receives Increment calls from the consuming goroutine after each
// delivered batch. Implementations must return quickly; none of them block on
// I/O beyond a single throttled write.
//
//   - Bar draws a throttled terminal bar: Progress: |#####-----| 50.0% [5/10]
//   - Tracker keeps thread-safe counters, rate and ETA for status endpoints
//   - LogReporter logs every N batches through the logger package
//   - Multi fans a single Increment out to several reporters
package progress
