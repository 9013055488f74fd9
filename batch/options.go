package batch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/observability"
	"github.com/kbukum/batchkit/progress"
	"github.com/kbukum/batchkit/resilience"
)

// Defaults used when the matching option is not given.
const (
	DefaultWorkers       = 1
	DefaultQueueCapacity = 16
)

const tracerName = "github.com/kbukum/batchkit/batch"

type settings struct {
	ctx           context.Context
	workers       int
	queueCapacity int
	reporter      progress.Reporter
	progressBar   bool
	nextTimeout   time.Duration
	retry         resilience.RetryConfig
	log           *logger.Logger
	metrics       *observability.Metrics
	tracer        trace.Tracer
}

func defaultSettings() settings {
	return settings{
		ctx:           context.Background(),
		workers:       DefaultWorkers,
		queueCapacity: DefaultQueueCapacity,
		log:           logger.Nop(),
		tracer:        observability.Tracer(tracerName),
	}
}

// Option configures a Provider.
type Option func(*settings)

// WithWorkers sets the number of worker goroutines. Batches arrive in index
// order only when n is 1.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithQueueCapacity sets how many finished batches may wait for the consumer.
// It should exceed the worker count to keep every worker busy.
func WithQueueCapacity(n int) Option {
	return func(s *settings) { s.queueCapacity = n }
}

// WithProgress notifies r once per delivered batch, from the consumer side.
func WithProgress(r progress.Reporter) Option {
	return func(s *settings) { s.reporter = r }
}

// WithProgressBar draws a terminal progress bar on stderr sized to the batch count.
func WithProgressBar() Option {
	return func(s *settings) { s.progressBar = true }
}

// WithNextTimeout bounds every Next call. An elapsed timeout is reported as a
// TIMEOUT error and leaves the pipeline running.
func WithNextTimeout(d time.Duration) Option {
	return func(s *settings) { s.nextTimeout = d }
}

// WithRetry retries a failing transform before it is reported as a failure.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(s *settings) { s.retry = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records transform durations, deliveries, failures and queue depth.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTracer sets the tracer used for per-batch transform spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithContext sets the parent context. Cancelling it cancels the pipeline and
// the context passed to transforms.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}
