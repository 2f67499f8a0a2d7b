package collector

import (
	"context"
	"sync"
	"time"

	"metrics-collector/core/models"
	"metrics-collector/core/queries"
	"metrics-collector/core/repository"
	"metrics-collector/core/runner"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures one collector instance
type Options struct {
	Concurrency int
	Interval    time.Duration
	UploadTypes []string
	PinStatuses []string
}

// Collector computes the operational metric set from the read source
// and publishes current values to the write store. One RunOnce call is
// one batch: every metric is an independent task, fanned out with a
// bounded concurrency so neither database pool is overwhelmed.
type Collector struct {
	read    queries.Querier
	metrics *repository.MetricRepository
	opts    Options
	log     *zap.Logger

	mu     sync.RWMutex
	status models.RunStatus
}

// New creates a new collector
func New(read queries.Querier, metrics *repository.MetricRepository, opts Options, log *zap.Logger) *Collector {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}

	return &Collector{
		read:    read,
		metrics: metrics,
		opts:    opts,
		log:     log,
		status:  models.RunStatusIdle,
	}
}

// Status reports the state of the most recent collection run
func (c *Collector) Status() models.RunStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Collector) setStatus(s models.RunStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Start runs the collection loop until the context is cancelled. A
// failed run is logged and the loop waits for the next tick; there is
// no retry within a run.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RunOnce(ctx); err != nil {
				c.log.Error("Metrics collection run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce executes one full collection batch. Every task runs to
// completion regardless of sibling failures; each failure is logged
// and the first one (in submission order) is returned as the run's
// terminal error.
func (c *Collector) RunOnce(ctx context.Context) error {
	c.setStatus(models.RunStatusRunning)
	log := c.log.With(zap.String("run_id", uuid.New().String()))

	tasks := c.buildTasks(log)
	log.Info("Metrics collection started",
		zap.Int("tasks", len(tasks)),
		zap.Int("concurrency", c.opts.Concurrency),
	)

	outcomes, err := runner.Run(ctx, tasks, c.opts.Concurrency)
	if err != nil {
		c.setStatus(models.RunStatusFailed)
		return err
	}

	var firstErr error
	failed := 0
	for _, o := range outcomes {
		if o.Fulfilled() {
			continue
		}
		failed++
		log.Error("Metric task failed", zap.String("task", o.Label), zap.Error(o.Err))
		if firstErr == nil {
			firstErr = o.Err
		}
	}

	if firstErr != nil {
		c.setStatus(models.RunStatusFailed)
		log.Error("Metrics collection failed",
			zap.Int("tasks", len(tasks)),
			zap.Int("failed", failed),
		)
		return firstErr
	}

	c.setStatus(models.RunStatusSucceeded)
	log.Info("Metrics collection finished", zap.Int("tasks", len(tasks)))
	return nil
}

// buildTasks assembles the full task set: the fixed metrics plus one
// count per configured upload type and pin status. Per-category tasks
// do not recompute the overall totals; those are tasks of their own.
func (c *Collector) buildTasks(log *zap.Logger) []runner.Task {
	qs := []queries.MetricQuery{
		queries.CountAll{Base: "users", Table: "users"},
		queries.SumScalar{Base: "content_bytes", Table: "content", Column: "dag_size"},
		queries.CountAll{Base: "uploads", Table: "uploads"},
		queries.CountAll{Base: "pins", Table: "pins"},
		queries.CountAll{Base: "pin_requests", Table: "pin_requests"},
	}

	for _, t := range c.opts.UploadTypes {
		qs = append(qs, queries.CountFiltered{Base: "uploads", Table: "uploads", Column: "type", Category: t})
	}
	for _, s := range c.opts.PinStatuses {
		qs = append(qs, queries.CountFiltered{Base: "pins", Table: "pins", Column: "status", Category: s})
	}

	tasks := make([]runner.Task, 0, len(qs))
	for _, q := range qs {
		tasks = append(tasks, c.instrument(q, log))
	}
	return tasks
}

// instrument wraps a query task with timing diagnostics. The per-task
// line is emitted on completion whether the task succeeded or not.
func (c *Collector) instrument(q queries.MetricQuery, log *zap.Logger) runner.Task {
	label := q.Label()

	return runner.Task{
		Label: label,
		Fn: func(ctx context.Context) error {
			start := time.Now()
			err := c.collect(ctx, q)
			log.Info("Metric task finished",
				zap.String("task", label),
				zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
				zap.Bool("ok", err == nil),
			)
			return err
		},
	}
}

// collect reads one query's samples and publishes each of them
func (c *Collector) collect(ctx context.Context, q queries.MetricQuery) error {
	samples, err := q.Execute(ctx, c.read)
	if err != nil {
		return err
	}

	for _, s := range samples {
		if err := c.metrics.Publish(ctx, s.Name, s.Value); err != nil {
			return err
		}
	}
	return nil
}
