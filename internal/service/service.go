// Package service runs long-lived services side by side. When one service
// fails, the others are stopped and the first failure is returned.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a long-running unit of work. Run blocks until ctx is cancelled
// or the service fails.
type Service interface {
	Name() string
	Run(ctx context.Context) error
}

// Group runs a set of services together.
type Group struct {
	services []Service
	logger   *zap.Logger
}

// NewGroup creates a group from services.
func NewGroup(logger *zap.Logger, services ...Service) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group{services: services, logger: logger}
}

// Add appends a service. It must be called before Run.
func (g *Group) Add(s Service) {
	g.services = append(g.services, s)
}

// Run starts every service and waits for all of them to stop. A service
// returning because ctx was cancelled is a clean shutdown.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	for _, s := range g.services {
		eg.Go(func() error {
			log := g.logger.With(zap.String("service", s.Name()))
			log.Info("service starting")

			err := s.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("service failed", zap.Error(err))
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			log.Info("service stopped")
			return nil
		})
	}

	return eg.Wait()
}
