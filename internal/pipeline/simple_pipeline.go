// Package pipeline moves documents from a source to a destination,
// applying optional transforms in between.
//
// # Basic Usage
//
//	p := pipeline.NewSimplePipeline(source, destination, nil, logger)
//	p.AddTransform(pipeline.OmitFieldsTransform("_attachment"))
//	stats, err := p.Run(ctx)
//
// A pass ends when the source stream is exhausted, when the source reports
// its terminal error, or when the destination fails. Either side failing
// cancels the other.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
)

// SimplePipeline streams one sync pass from source to destination.
type SimplePipeline struct {
	source      core.Source
	destination core.Destination
	transforms  []Transform

	bufferSize int

	logger *zap.Logger
	mu     sync.Mutex
	stats  Stats
}

// Transform modifies a document in flight. Returning a nil document drops it.
type Transform func(ctx context.Context, doc core.Document) (core.Document, error)

// PipelineConfig contains pipeline configuration parameters.
type PipelineConfig struct {
	BufferSize int // Documents buffered between source and destination
}

// DefaultPipelineConfig returns the default configuration.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{BufferSize: 100}
}

// Stats summarizes one pass.
type Stats struct {
	Read     int64
	Written  int64
	Dropped  int64
	Failed   int64
	ByType   map[string]int64
	Duration time.Duration
}

// NewSimplePipeline creates a pipeline. Call Run to start a pass.
func NewSimplePipeline(source core.Source, destination core.Destination, config *PipelineConfig, logger *zap.Logger) *SimplePipeline {
	if config == nil || config.BufferSize <= 0 {
		config = DefaultPipelineConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimplePipeline{
		source:      source,
		destination: destination,
		bufferSize:  config.BufferSize,
		logger:      logger,
	}
}

// AddTransform appends a transform. Transforms run in the order added.
func (p *SimplePipeline) AddTransform(transform Transform) {
	p.transforms = append(p.transforms, transform)
}

// Run executes one pass and blocks until it completes.
func (p *SimplePipeline) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	p.mu.Lock()
	p.stats = Stats{ByType: make(map[string]int64)}
	p.mu.Unlock()

	p.logger.Info("starting pipeline", zap.Int("transforms", len(p.transforms)))

	g, gctx := errgroup.WithContext(ctx)

	stream, err := p.source.Documents(gctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start source read: %w", err)
	}

	out := make(chan core.Document, p.bufferSize)
	errs := make(chan error, 1)

	g.Go(func() error {
		defer close(errs)
		defer close(out)
		p.forward(gctx, stream, out, errs)
		return nil
	})

	g.Go(func() error {
		n, err := p.destination.Write(gctx, &core.DocumentStream{Documents: out, Errors: errs})
		p.mu.Lock()
		p.stats.Written = int64(n)
		p.mu.Unlock()
		if err != nil {
			return fmt.Errorf("destination write failed: %w", err)
		}
		return nil
	})

	err = g.Wait()

	p.mu.Lock()
	p.stats.Duration = time.Since(start)
	stats := p.stats
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("pipeline failed",
			zap.Error(err),
			zap.Int64("documents_read", stats.Read),
			zap.Int64("documents_written", stats.Written))
		return &stats, err
	}

	p.logger.Info("pipeline completed",
		zap.Int64("documents_read", stats.Read),
		zap.Int64("documents_written", stats.Written),
		zap.Int64("documents_dropped", stats.Dropped),
		zap.Int64("documents_failed", stats.Failed),
		zap.Any("by_type", stats.ByType),
		zap.Duration("duration", stats.Duration))
	return &stats, nil
}

// forward reads the source stream, applies transforms and hands documents
// to the destination. The first source error is passed on through errs.
func (p *SimplePipeline) forward(ctx context.Context, stream *core.DocumentStream, out chan<- core.Document, errs chan<- error) {
	for {
		select {
		case doc, ok := <-stream.Documents:
			if !ok {
				for err := range stream.Errors {
					if err != nil {
						errs <- fmt.Errorf("source error: %w", err)
						break
					}
				}
				return
			}

			p.count(func(s *Stats) {
				s.Read++
				s.ByType[doc.Type()]++
			})

			doc = p.apply(ctx, doc)
			if doc == nil {
				continue
			}

			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			p.logger.Debug("source reader cancelled")
			return
		}
	}
}

func (p *SimplePipeline) apply(ctx context.Context, doc core.Document) core.Document {
	id := doc.ID()
	for i, transform := range p.transforms {
		result, err := transform(ctx, doc)
		if err != nil {
			p.logger.Warn("transform failed", zap.Int("transform", i), zap.String("_id", id), zap.Error(err))
			p.count(func(s *Stats) { s.Failed++ })
			return nil
		}
		if result == nil {
			p.count(func(s *Stats) { s.Dropped++ })
			return nil
		}
		doc = result
	}
	return doc
}

func (p *SimplePipeline) count(fn func(*Stats)) {
	p.mu.Lock()
	fn(&p.stats)
	p.mu.Unlock()
}

// Stats returns a snapshot of the counters of the current or last pass.
func (p *SimplePipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.stats
	snapshot.ByType = make(map[string]int64, len(p.stats.ByType))
	for k, v := range p.stats.ByType {
		snapshot.ByType[k] = v
	}
	return snapshot
}
