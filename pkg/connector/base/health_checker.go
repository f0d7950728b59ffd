package base

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health states reported by HealthChecker.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// unhealthyAfter is the number of consecutive failures that turns a degraded
// connector unhealthy.
const unhealthyAfter = 3

// HealthStatus is a snapshot of the last check.
type HealthStatus struct {
	Status              string    `json:"status"`
	Timestamp           time.Time `json:"timestamp"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Checks              int64     `json:"checks"`
	Failures            int64     `json:"failures"`
}

// HealthChecker runs a check function on an interval and keeps the result.
type HealthChecker struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	check    func(ctx context.Context) error
	logger   *zap.Logger

	mu     sync.RWMutex
	status HealthStatus
}

// NewHealthChecker creates a checker. The status is healthy until the first
// check says otherwise.
func NewHealthChecker(name string, interval time.Duration, check func(ctx context.Context) error, logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthChecker{
		name:     name,
		interval: interval,
		timeout:  10 * time.Second,
		check:    check,
		logger:   logger.With(zap.String("component", "health_checker")),
		status:   HealthStatus{Status: StatusHealthy, Timestamp: time.Now()},
	}
}

// Name returns the checker name.
func (hc *HealthChecker) Name() string {
	return hc.name
}

// Run checks immediately and then on every interval until ctx is done.
func (hc *HealthChecker) Run(ctx context.Context) error {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		hc.Check(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Check runs the check function once and records the outcome.
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	err := hc.check(checkCtx)

	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.status.Timestamp = time.Now()
	hc.status.Checks++

	if err != nil {
		hc.status.Failures++
		hc.status.ConsecutiveFailures++
		hc.status.LastError = err.Error()
		if hc.status.ConsecutiveFailures >= unhealthyAfter {
			hc.status.Status = StatusUnhealthy
		} else {
			hc.status.Status = StatusDegraded
		}

		hc.logger.Warn("health check failed",
			zap.Error(err),
			zap.String("status", hc.status.Status),
			zap.Int("consecutive_failures", hc.status.ConsecutiveFailures))
		return hc.status
	}

	hc.status.ConsecutiveFailures = 0
	hc.status.Status = StatusHealthy
	hc.status.LastError = ""
	hc.logger.Debug("health check passed")
	return hc.status
}

// Status returns the last recorded status.
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

// IsHealthy reports whether the last status is not unhealthy. A degraded
// connector still counts as healthy.
func (hc *HealthChecker) IsHealthy() bool {
	return hc.Status().Status != StatusUnhealthy
}
