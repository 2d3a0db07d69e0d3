package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gewnthar/cragbook/models"
)

type countingApplier struct {
	calls    atomic.Int32
	triggers chan models.SyncTrigger
}

func (c *countingApplier) Apply(_ context.Context, trigger models.SyncTrigger) (*models.ApplyResult, error) {
	c.calls.Add(1)
	select {
	case c.triggers <- trigger:
	default:
	}
	return &models.ApplyResult{}, nil
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	applier := &countingApplier{triggers: make(chan models.SyncTrigger, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewScheduler(applier, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	assert.Equal(t, models.TriggerScheduled, <-applier.triggers)
	assert.Eventually(t, func() bool { return applier.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSchedulerDisabledWithoutInterval(t *testing.T) {
	applier := &countingApplier{triggers: make(chan models.SyncTrigger, 1)}

	NewScheduler(applier, 0).Run(context.Background())
	assert.Zero(t, applier.calls.Load())
}
