package base

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Mykobyhub/kibana-connectors/pkg/testutil"
)

func TestHealthChecker(t *testing.T) {
	var fail atomic.Bool
	hc := NewHealthChecker("salesforce", time.Hour, func(ctx context.Context) error {
		if fail.Load() {
			return errors.New("connection refused")
		}
		return nil
	}, testutil.TestLogger(t))
	ctx := testutil.TestContext(t)

	assert.Equal(t, StatusHealthy, hc.Check(ctx).Status)

	fail.Store(true)
	assert.Equal(t, StatusDegraded, hc.Check(ctx).Status)
	assert.Equal(t, StatusDegraded, hc.Check(ctx).Status)
	assert.True(t, hc.IsHealthy())

	status := hc.Check(ctx)
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, 3, status.ConsecutiveFailures)
	assert.Equal(t, "connection refused", status.LastError)
	assert.False(t, hc.IsHealthy())

	fail.Store(false)
	status = hc.Check(ctx)
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Empty(t, status.LastError)
	assert.EqualValues(t, 5, status.Checks)
	assert.EqualValues(t, 3, status.Failures)
}

func TestHealthCheckerRun(t *testing.T) {
	var checks atomic.Int32
	hc := NewHealthChecker("salesforce", 5*time.Millisecond, func(ctx context.Context) error {
		checks.Add(1)
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	done := make(chan error, 1)
	go func() { done <- hc.Run(ctx) }()

	testutil.AssertEventually(t, func() bool { return checks.Load() >= 2 }, 5*time.Second, "periodic checks")
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, "salesforce", hc.Name())
}
