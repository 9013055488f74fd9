package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/component"
	"github.com/kbukum/batchkit/config"
	"github.com/kbukum/batchkit/dataset"
	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/memo"
	"github.com/kbukum/batchkit/observability"
	"github.com/kbukum/batchkit/progress"
	"github.com/kbukum/batchkit/status"
	"github.com/kbukum/batchkit/tracker"
)

type runFlags struct {
	configFile string
	items      int
	batchSize  int
	workers    int
	queue      int
	progress   bool
	delay      time.Duration
	failAt     int
	timeout    time.Duration
	retries    int
	statusAddr string
	cache      bool
	epochs     int
	shuffle    bool
	seed       uint64
	outDir     string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic hashing workload through the pipeline",
		Example: `  batchkit run --items 100000 --batch-size 256 --workers 8 --progress
  batchkit run --epochs 3 --shuffle --out ./runs/a --status-addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(cmd, &f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return execute(ctx, cmd, cfg, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "path to config.yml")
	fl.IntVar(&f.items, "items", 10000, "number of synthetic items")
	fl.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "items per batch")
	fl.IntVar(&f.workers, "workers", batch.DefaultWorkers, "worker goroutines")
	fl.IntVar(&f.queue, "queue", batch.DefaultQueueCapacity, "finished batches buffered for the consumer")
	fl.BoolVar(&f.progress, "progress", false, "draw a progress bar on stderr")
	fl.DurationVar(&f.delay, "delay", 0, "artificial delay per batch")
	fl.IntVar(&f.failAt, "fail-at", -1, "fail the batch containing this item")
	fl.DurationVar(&f.timeout, "timeout", 0, "bound on each wait for the next batch")
	fl.IntVar(&f.retries, "retries", 1, "attempts per batch transform")
	fl.StringVar(&f.statusAddr, "status-addr", "", "serve /healthz and /progress on this address")
	fl.BoolVar(&f.cache, "cache", false, "memoize batch results on disk")
	fl.IntVar(&f.epochs, "epochs", 1, "passes over the data")
	fl.BoolVar(&f.shuffle, "shuffle", false, "shuffle the data every epoch")
	fl.Uint64Var(&f.seed, "seed", 0, "shuffle seed, 0 for random")
	fl.StringVar(&f.outDir, "out", "", "directory for the per-epoch log.csv")
	return cmd
}

// loadRunConfig reads the config file and environment, then applies every
// flag the user set explicitly.
func loadRunConfig(cmd *cobra.Command, f *runFlags) (*config.AppConfig, error) {
	var cfg config.AppConfig
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if err := config.Load("batchkit", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	changed := cmd.Flags().Changed
	if changed("batch-size") {
		cfg.Pipeline.BatchSize = f.batchSize
	}
	if changed("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	if changed("queue") {
		cfg.Pipeline.QueueCapacity = f.queue
	}
	if changed("progress") {
		cfg.Pipeline.ReportProgress = f.progress
	}
	if changed("timeout") {
		cfg.Pipeline.NextTimeout = f.timeout
	}
	if changed("retries") {
		cfg.Pipeline.Retry.MaxAttempts = f.retries
		cfg.Pipeline.Retry.InitialBackoff = 10 * time.Millisecond
	}
	if changed("status-addr") {
		cfg.Status.Enabled = f.statusAddr != ""
		cfg.Status.Addr = f.statusAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func execute(ctx context.Context, cmd *cobra.Command, cfg *config.AppConfig, f *runFlags) error {
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	components := component.NewRegistry(log)
	defer func() { _ = components.StopAll(context.WithoutCancel(ctx)) }()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Observability)
		if err != nil {
			return err
		}
		mp, err := observability.InitMeter(ctx, &cfg.Observability)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return err
		}
		telemetry := &component.Func{
			ID: "telemetry",
			OnStop: func(ctx context.Context) error {
				return stderrors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
			},
		}
		if err := components.Register(telemetry); err != nil {
			return err
		}
		if err := components.StartAll(ctx); err != nil {
			return err
		}
		if metrics, err = observability.NewMetrics(observability.Meter("batchkit"), cfg.Name); err != nil {
			return err
		}
	}

	var srv *status.Server
	if cfg.Status.Enabled {
		srv = status.New(cfg.Status.Addr, log)
		srv.SetHealthChecker(components.HealthAll)
		if err := components.Register(srv); err != nil {
			return err
		}
	}
	if err := components.StartAll(ctx); err != nil {
		return err
	}

	transform := hashWorkload(f.delay, f.failAt)
	if f.cache {
		transform = memo.Transform(memo.New(cfg.Cache.Dir, memo.WithLogger(log)), workloadName(f.delay, f.failAt), transform)
	}

	items := make([]int, f.items)
	for i := range items {
		items[i] = i
	}
	data := batch.FromSlice(items)

	var rng *rand.Rand
	if f.seed != 0 {
		rng = rand.New(rand.NewPCG(f.seed, f.seed))
	}

	history := tracker.New(f.outDir)
	if f.outDir != "" {
		if err := os.MkdirAll(f.outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	start := time.Now()
	var batches, delivered int
	logEpoch := func(msg string) { log.Info(msg) }
	for epoch, epochTracker := range tracker.Epochs(f.epochs, logEpoch) {
		src := data
		if f.shuffle {
			src = dataset.Permute(data, rng)
		}

		count := batch.BatchCount(src.Len(), cfg.Pipeline.BatchSize)
		counter := progress.NewTracker(count)
		opts := append(cfg.Pipeline.Options(),
			batch.WithContext(ctx),
			batch.WithLogger(log),
			batch.WithMetrics(metrics),
			batch.WithProgress(progress.Multi(counter, progress.NewLogReporter(log, count, 0))),
		)
		p, err := batch.New(src, cfg.Pipeline.BatchSize, transform, opts...)
		if err != nil {
			return err
		}
		if srv != nil {
			srv.Attach(p, counter)
		}

		for r, err := range p.All(ctx) {
			if err != nil {
				return err
			}
			batches++
			delivered += r.Items
			values := map[string]float64{"score": r.Score, "items": float64(r.Items)}
			epochTracker.Update(values)
			history.Update(values)
		}
		if err := history.RegisterMeans(epoch); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "epochs=%d batches=%d items=%d elapsed=%s\n",
		f.epochs, batches, delivered, time.Since(start).Round(time.Millisecond))
	return err
}
