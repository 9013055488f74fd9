package batch

import (
	"context"
	stderrors "errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/batchkit/errors"
	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/observability"
	"github.com/kbukum/batchkit/progress"
	"github.com/kbukum/batchkit/resilience"
)

// Transform turns one contiguous slice of the source into a batch.
// It must not retain or modify items after it returns.
type Transform[T, B any] func(ctx context.Context, items []T) (B, error)

// State is the lifecycle state of a Provider.
type State int32

const (
	// Running means workers may still be producing batches.
	Running State = iota
	// Draining means teardown started: buffered batches are being discarded
	// and workers joined.
	Draining
	// Closed means every worker has returned and the queue is empty.
	Closed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time view of a Provider.
type Stats struct {
	RunID         string `json:"run_id"`
	State         string `json:"state"`
	BatchCount    int    `json:"batch_count"`
	Allocated     int    `json:"allocated"`
	Completed     int    `json:"completed"`
	Delivered     int    `json:"delivered"`
	Queued        int    `json:"queued"`
	QueueCapacity int    `json:"queue_capacity"`
	Workers       int    `json:"workers"`
}

// Provider is the consumer-facing handle of a running batch pipeline.
// Next and Close may be called from different goroutines; Next itself is
// meant for a single consumer.
//
// Close the provider, or drain it through Next, All, Collect or ForEach, to
// release its workers. A provider dropped without that is closed in the
// background once the garbage collector finds it unreachable; that is a
// safety net, not a substitute for Close.
type Provider[T, B any] struct {
	run *pipeline[T, B]
}

// pipeline is the state shared by the workers and the consumer. Workers only
// reference the pipeline, so the Provider handle can become unreachable while
// they are blocked.
type pipeline[T, B any] struct {
	runID      string
	src        Source[T]
	length     int
	batchSize  int
	batchCount int
	workers    int
	transform  Transform[T, B]

	shared *sharedState
	queue  *queue[B]
	group  errgroup.Group

	runCtx      context.Context
	runCancel   context.CancelFunc
	statCtx     context.Context
	parent      context.Context
	stopWatch   func() bool
	nextTimeout time.Duration

	reporter progress.Reporter
	retry    resilience.RetryConfig
	log      *logger.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer

	stateVal  atomic.Int32
	closeOnce sync.Once
}

// New validates its arguments, starts the worker pool and returns the handle.
// A nil transform means identity and is only accepted when B is []T.
// Invalid arguments yield a CONFIGURATION_ERROR and start nothing.
func New[T, B any](src Source[T], batchSize int, transform Transform[T, B], opts ...Option) (*Provider[T, B], error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	if src == nil {
		return nil, errors.Configuration("data", "is required")
	}
	if batchSize <= 0 {
		return nil, errors.Configuration("batch_size", "must be positive").WithDetail("value", batchSize)
	}
	if s.workers <= 0 {
		return nil, errors.Configuration("worker_count", "must be positive").WithDetail("value", s.workers)
	}
	if s.queueCapacity <= 0 {
		return nil, errors.Configuration("queue_capacity", "must be positive").WithDetail("value", s.queueCapacity)
	}
	length := src.Len()
	if length <= 0 {
		return nil, errors.Configuration("data", "must not be empty")
	}
	if transform == nil {
		id, ok := any(Transform[T, []T](identity[T])).(Transform[T, B])
		if !ok {
			return nil, errors.Configuration("transform", "is required when the batch type is not a slice of the source type")
		}
		transform = id
	}

	batchCount := BatchCount(length, batchSize)
	reporter := s.reporter
	if s.progressBar {
		reporter = progress.Multi(reporter, progress.NewBar(batchCount))
	}

	runID := uuid.NewString()
	runCtx, runCancel := context.WithCancel(s.ctx)
	p := &pipeline[T, B]{
		runID:       runID,
		src:         src,
		length:      length,
		batchSize:   batchSize,
		batchCount:  batchCount,
		workers:     s.workers,
		transform:   transform,
		shared:      newSharedState(batchCount),
		queue:       newQueue[B](s.queueCapacity),
		runCtx:      runCtx,
		runCancel:   runCancel,
		statCtx:     context.WithoutCancel(runCtx),
		parent:      s.ctx,
		nextTimeout: s.nextTimeout,
		reporter:    reporter,
		retry:       s.retry,
		log:         s.log.WithComponent("batch").WithFields(logger.Fields(logger.FieldRunID, runID)),
		metrics:     s.metrics,
		tracer:      s.tracer,
	}
	p.stateVal.Store(int32(Running))
	p.stopWatch = context.AfterFunc(runCtx, p.abort)

	p.log.Debug("pipeline started", logger.Fields(
		"items", length,
		"batch_size", batchSize,
		"batches", batchCount,
		"workers", s.workers,
		"queue_capacity", s.queueCapacity,
	))

	for id := range s.workers {
		p.group.Go(func() error { return p.work(id) })
	}
	go func() {
		_ = p.group.Wait()
		close(p.queue.finished)
	}()

	h := &Provider[T, B]{run: p}
	runtime.AddCleanup(h, func(p *pipeline[T, B]) {
		// release blocks until workers return; keep the cleanup goroutine free.
		go p.release()
	}, p)
	return h, nil
}

// Slices is New with the identity transform: every batch is a sub-slice of src.
func Slices[T any](src Source[T], batchSize int, opts ...Option) (*Provider[T, []T], error) {
	return New[T, []T](src, batchSize, nil, opts...)
}

func identity[T any](_ context.Context, items []T) ([]T, error) {
	return items, nil
}

// Len returns the total number of batches, fixed at construction.
func (h *Provider[T, B]) Len() int { return h.run.batchCount }

// RunID identifies this pipeline run in logs and status output.
func (h *Provider[T, B]) RunID() string { return h.run.runID }

// State returns the current lifecycle state.
func (h *Provider[T, B]) State() State { return h.run.state() }

// Err returns the transform failure that stopped the pipeline, if any.
func (h *Provider[T, B]) Err() error { return h.run.shared.failure() }

// Stats returns a snapshot of the pipeline counters.
func (h *Provider[T, B]) Stats() Stats { return h.run.stats() }

// Next returns the next batch.
//
//   - (b, true, nil): a batch.
//   - (zero, false, nil): the sequence is exhausted or the provider was closed.
//   - (zero, false, err): a TRANSFORM_FAILURE (reported once, after which the
//     provider is closed), a TIMEOUT when the per-call deadline elapsed, or the
//     parent context's error wrapped as CANCELLED.
//
// A timeout leaves the pipeline running; the caller may call Next again.
func (h *Provider[T, B]) Next(ctx context.Context) (B, bool, error) {
	b, ok, err := h.run.next(ctx)
	runtime.KeepAlive(h)
	return b, ok, err
}

// Close stops the pipeline: it cancels, discards buffered batches and waits
// for every worker to return. Only the first call does any work; it always
// returns nil.
func (h *Provider[T, B]) Close() error {
	h.run.release()
	runtime.KeepAlive(h)
	return nil
}

func (p *pipeline[T, B]) state() State { return State(p.stateVal.Load()) }

func (p *pipeline[T, B]) stats() Stats {
	c := p.shared.counters()
	return Stats{
		RunID:         p.runID,
		State:         p.state().String(),
		BatchCount:    p.batchCount,
		Allocated:     c.allocated,
		Completed:     c.completed,
		Delivered:     c.delivered,
		Queued:        p.queue.len(),
		QueueCapacity: p.queue.capacity(),
		Workers:       p.workers,
	}
}

func (p *pipeline[T, B]) next(ctx context.Context) (B, bool, error) {
	var zero B
	if p.state() != Running {
		return zero, false, nil
	}
	if p.nextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.nextTimeout)
		defer cancel()
	}

	it, outcome := p.queue.pop(ctx)
	switch outcome {
	case popItem:
		p.shared.markDelivered()
		p.metrics.QueueDelta(p.statCtx, -1)
		p.metrics.RecordDelivered(p.statCtx)
		if p.reporter != nil {
			p.reporter.Increment(1)
		}
		return it.batch, true, nil
	case popExhausted:
		p.release()
		return zero, false, nil
	case popCancelled:
		err := p.shared.takeFailure()
		p.release()
		return zero, false, err
	default:
		if p.parent.Err() != nil {
			// ctx derives from the parent; report it the way workers see it.
			p.abort()
			err := p.shared.takeFailure()
			p.release()
			return zero, false, err
		}
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, false, errors.Timeout("batch.next").WithCause(ctx.Err())
		}
		return zero, false, ctx.Err()
	}
}

// release tears the pipeline down once: cancel, drain, join the workers, drain again.
func (p *pipeline[T, B]) release() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.stateVal.Store(int32(Draining))
		dropped := p.queue.drain()
		<-p.queue.finished
		dropped += p.queue.drain()
		p.metrics.QueueDelta(p.statCtx, -int64(dropped))
		p.stopWatch()
		p.stateVal.Store(int32(Closed))

		c := p.shared.counters()
		p.log.Debug("pipeline closed", logger.Fields(
			"delivered", c.delivered,
			"batches", p.batchCount,
			"dropped", dropped,
		))
	})
}

// cancel marks the shared state cancelled, wakes blocked workers and the
// consumer, and cancels the context handed to transforms.
func (p *pipeline[T, B]) cancel() {
	p.shared.cancel()
	p.queue.cancel()
	p.runCancel()
}

// abort runs when the run context ends. A cancelled parent is recorded as the
// pipeline failure so the consumer learns why the sequence stopped early.
func (p *pipeline[T, B]) abort() {
	if err := p.parent.Err(); err != nil {
		if p.shared.fail(errors.Cancelled("batch pipeline").WithCause(context.Cause(p.parent))) {
			p.log.Warn("parent context cancelled", logger.ErrorFields("run", err))
		}
	}
	p.cancel()
}
