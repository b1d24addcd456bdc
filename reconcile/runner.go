package reconcile

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"golang.org/x/sync/errgroup"
)

// Task is one periodic reconciliation pass. Run is expected to be idempotent;
// failures are logged and the schedule keeps ticking.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives a fixed set of tasks, each on its own ticker. Every task runs
// once at startup so state converges immediately after a restart.
type Runner struct {
	tasks []Task
}

func NewRunner(tasks ...Task) *Runner {
	for _, task := range tasks {
		if task.Name == "" || task.Interval <= 0 || task.Run == nil {
			panic("invalid reconcile task: " + task.Name)
		}
	}
	return &Runner{tasks: tasks}
}

func (r *Runner) Run(ctx context.Context) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	for _, task := range r.tasks {
		task := task
		errgrp.Go(func() error {
			r.runTask(ctx, task)
			return nil
		})
	}

	return errgrp.Wait()
}

func (r *Runner) runTask(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	r.runOnce(ctx, task)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, task)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, task Task) {
	if err := task.Run(ctx); err != nil {
		log.FromContext(ctx).
			WithField("task", task.Name).
			WithField("error", err.Error()).
			Error("Reconcile task failed, will retry on next tick")
	}
}
