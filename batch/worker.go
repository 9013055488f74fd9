package batch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/batchkit/errors"
	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/resilience"
)

// work is the loop run by every worker goroutine.
func (p *pipeline[T, B]) work(id int) error {
	log := p.log.WithFields(logger.Fields(logger.FieldWorker, id))
	processed := 0
	defer func() {
		log.Debug("worker exited", logger.Fields("processed", processed))
	}()

	for {
		idx, ok := p.shared.allocate()
		if !ok {
			return nil
		}

		lo, hi := Bounds(idx, p.length, p.batchSize)
		b, err := p.transformBatch(idx, p.src.Slice(lo, hi))
		if err != nil {
			if p.runCtx.Err() != nil {
				// Aborted by teardown, not a failure of its own.
				p.abort()
				return nil
			}
			failure := errors.TransformFailure(idx, err)
			if p.shared.fail(failure) {
				p.metrics.RecordFailure(p.statCtx)
				log.Error("transform failed", logger.Fields(
					logger.FieldBatchIndex, idx,
					logger.FieldError, err.Error(),
				))
			}
			p.cancel()
			return failure
		}

		// Counted before the push so a consumer never sees a delivery
		// ahead of its completion.
		p.shared.markCompleted()
		p.metrics.QueueDelta(p.statCtx, 1)
		if !p.queue.push(item[B]{index: idx, batch: b}) {
			p.shared.unmarkCompleted()
			p.metrics.QueueDelta(p.statCtx, -1)
			return nil
		}
		processed++
	}
}

// transformBatch runs the transform inside a span, with optional retry.
// A panicking transform is turned into an error.
func (p *pipeline[T, B]) transformBatch(idx int, items []T) (B, error) {
	ctx, span := p.tracer.Start(p.runCtx, "batch.transform", trace.WithAttributes(
		attribute.Int("batch.index", idx),
		attribute.Int("batch.size", len(items)),
	))
	defer span.End()

	call := func(ctx context.Context) (out B, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("transform panicked: %v", r)
			}
		}()
		return p.transform(ctx, items)
	}

	start := time.Now()
	var (
		b   B
		err error
	)
	if p.retry.Enabled() {
		b, err = resilience.Retry(ctx, p.retry, call)
	} else {
		b, err = call(ctx)
	}
	p.metrics.RecordTransform(ctx, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return b, err
}
