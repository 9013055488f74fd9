package component

import (
	"context"
	"sync/atomic"
)

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a service with a start/stop lifecycle.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Func adapts a pair of functions to Component. Health reports healthy
// while started.
type Func struct {
	ID      string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error

	started atomic.Bool
}

func (f *Func) Name() string { return f.ID }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart != nil {
		if err := f.OnStart(ctx); err != nil {
			return err
		}
	}
	f.started.Store(true)
	return nil
}

func (f *Func) Stop(ctx context.Context) error {
	f.started.Store(false)
	if f.OnStop != nil {
		return f.OnStop(ctx)
	}
	return nil
}

func (f *Func) Health(context.Context) Health {
	if f.started.Load() {
		return Health{Name: f.ID, Status: StatusHealthy}
	}
	return Health{Name: f.ID, Status: StatusUnhealthy, Message: "not started"}
}

// Overall folds component reports into one status: unhealthy wins over
// degraded, degraded over healthy.
func Overall(reports []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range reports {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
