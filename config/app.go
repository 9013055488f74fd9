package config

import (
	"fmt"
	"time"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/observability"
	"github.com/kbukum/batchkit/resilience"
	"github.com/kbukum/batchkit/validation"
)

// AppConfig is the full configuration of the batchkit binary.
type AppConfig struct {
	Name          string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Pipeline      PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Status        StatusConfig         `yaml:"status" mapstructure:"status"`
	Cache         CacheConfig          `yaml:"cache" mapstructure:"cache"`
}

// PipelineConfig mirrors the batch construction options.
type PipelineConfig struct {
	BatchSize      int                    `yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`
	Workers        int                    `yaml:"workers" mapstructure:"workers" validate:"gt=0"`
	QueueCapacity  int                    `yaml:"queue_capacity" mapstructure:"queue_capacity" validate:"gt=0"`
	ReportProgress bool                   `yaml:"report_progress" mapstructure:"report_progress"`
	NextTimeout    time.Duration          `yaml:"next_timeout" mapstructure:"next_timeout" validate:"gte=0"`
	Retry          resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// StatusConfig configures the HTTP status endpoint.
type StatusConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// CacheConfig configures the on-disk memoization cache.
type CacheConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Default values.
const (
	DefaultBatchSize  = 32
	DefaultStatusAddr = ":8080"
	DefaultCacheDir   = ".cache"
)

// ApplyDefaults fills every unset field.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "batchkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Observability.ApplyDefaults(c.Name)
	if c.Status.Addr == "" {
		c.Status.Addr = DefaultStatusAddr
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
}

// Validate checks struct tags first, then the logging section.
func (c *AppConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset pipeline fields.
func (c *PipelineConfig) ApplyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers == 0 {
		c.Workers = batch.DefaultWorkers
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = batch.DefaultQueueCapacity
	}
}

// Validate checks the pipeline section on its own.
func (c *PipelineConfig) Validate() error {
	return validation.Validate(c)
}

// Options translates the section into batch options. BatchSize is passed to
// batch.New directly.
func (c *PipelineConfig) Options() []batch.Option {
	opts := []batch.Option{
		batch.WithWorkers(c.Workers),
		batch.WithQueueCapacity(c.QueueCapacity),
	}
	if c.ReportProgress {
		opts = append(opts, batch.WithProgressBar())
	}
	if c.NextTimeout > 0 {
		opts = append(opts, batch.WithNextTimeout(c.NextTimeout))
	}
	if c.Retry.Enabled() {
		opts = append(opts, batch.WithRetry(c.Retry))
	}
	return opts
}
