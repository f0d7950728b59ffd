package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SyncFunc runs one sync pass.
type SyncFunc func(ctx context.Context) error

// SyncService runs a sync pass immediately and then once per interval.
// Passes never overlap. A failed pass is logged and the schedule continues
// unless FailFast is set.
type SyncService struct {
	Interval time.Duration
	FailFast bool

	run    SyncFunc
	logger *zap.Logger
	passes atomic.Int64
	failed atomic.Int64
}

// NewSyncService creates a periodic sync service.
func NewSyncService(run SyncFunc, interval time.Duration, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{Interval: interval, run: run, logger: logger}
}

// Name implements Service.
func (s *SyncService) Name() string {
	return "sync"
}

// Run implements Service.
func (s *SyncService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		if err := s.pass(ctx); err != nil {
			return err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *SyncService) pass(ctx context.Context) error {
	n := s.passes.Add(1)
	log := s.logger.With(zap.Int64("pass", n))

	start := time.Now()
	err := s.run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.failed.Add(1)
		log.Error("sync pass failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		if s.FailFast {
			return err
		}
		return nil
	}

	log.Info("sync pass finished", zap.Duration("duration", time.Since(start)))
	return nil
}

// Passes returns how many passes have started and how many failed.
func (s *SyncService) Passes() (started, failed int64) {
	return s.passes.Load(), s.failed.Load()
}
