// Package batch turns a random-access data source into a bounded-concurrency
// stream of processed batches.
//
// A Provider splits a Source of length L into ceil(L/batchSize) contiguous
// slices, runs a user transform over each slice on a fixed pool of worker
// goroutines, and buffers finished batches in a fixed-capacity queue. Workers
// block when the queue is full, so memory stays bounded no matter how slow the
// consumer is.
//
// The consumer pulls with Next, which returns (batch, true, nil) per batch and
// (zero, false, nil) at the end:
//
//	p, err := batch.New(batch.FromSlice(samples), 32, decode,
//	    batch.WithWorkers(4),
//	    batch.WithQueueCapacity(16),
//	)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	for {
//	    b, ok, err := p.Next(ctx)
//	    if err != nil {
//	        return err // TRANSFORM_FAILURE or TIMEOUT
//	    }
//	    if !ok {
//	        break
//	    }
//	    train(b)
//	}
//
// # Ordering
//
// With one worker batches arrive in index order. With more workers they arrive
// in completion order; every index is still delivered exactly once.
//
// # Shutdown
//
// Close cancels the pipeline, discards buffered batches and waits for every
// worker to return. It runs automatically when the sequence is exhausted or a
// transform fails, and is safe to call any number of times. A transform that
// is already running finishes before its worker observes the cancellation.
package batch
