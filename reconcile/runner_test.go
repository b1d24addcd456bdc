package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunnerRunsTaskOnceImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	runner := NewRunner(Task{
		Name:     "counter",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			cancel()
			return nil
		},
	})

	err := runner.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), runs.Load())
}

func TestRunnerKeepsTickingPastFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	runner := NewRunner(Task{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if runs.Add(1) >= 3 {
				cancel()
			}
			return errors.New("transient failure")
		},
	})

	err := runner.Run(ctx)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestNewRunnerRejectsInvalidTask(t *testing.T) {
	assert.Panics(t, func() {
		NewRunner(Task{Name: "no-run", Interval: time.Second})
	})
}
