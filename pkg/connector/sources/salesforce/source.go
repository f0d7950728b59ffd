package salesforce

import (
	"context"
	"iter"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mykobyhub/kibana-connectors/pkg/clients"
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/logger"
	"github.com/Mykobyhub/kibana-connectors/pkg/metrics"
	"github.com/Mykobyhub/kibana-connectors/pkg/observability"
)

const documentBufferSize = 64

// Source streams normalized Salesforce documents. Each call to Documents is
// an independent sync pass with its own reference caches.
type Source struct {
	name       string
	config     *Config
	client     *Client
	mapper     *Mapper
	fetcher    *attachmentFetcher
	httpClient *http.Client
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewSalesforceSource allocates a source. Initialize must be called before use.
func NewSalesforceSource(name string, cfg *config.BaseConfig) (core.Source, error) {
	return &Source{
		name:    name,
		metrics: metrics.NewCollector(name),
		logger:  logger.Get().With(zap.String("connector", name)),
	}, nil
}

// Initialize parses and validates the settings and builds the API client.
func (s *Source) Initialize(ctx context.Context, cfg *config.BaseConfig) error {
	sc, err := ParseConfig(cfg)
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	s.config = sc

	if s.logger == nil {
		s.logger = logger.Get().With(zap.String("connector", cfg.Name))
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector(cfg.Name)
	}
	if s.httpClient == nil {
		s.httpClient = clients.NewHTTPClient(clients.HTTPConfigFromBase(cfg), s.logger)
	}
	retry := base.RetryPolicyFromConfig(cfg.Reliability)

	s.client = NewClient(sc, s.httpClient, retry, s.metrics, s.logger)
	s.mapper = NewMapper(s.client.BaseURL())
	s.fetcher = &attachmentFetcher{
		client:  s.client,
		maxSize: sc.MaxAttachmentSize,
		metrics: s.metrics,
		logger:  s.logger.With(zap.String("component", "attachments")),
	}
	if sc.UseTextExtraction {
		s.fetcher.extractor = NewHTTPExtractor(sc.ExtractionServiceURL, s.httpClient, retry, s.logger)
	}

	s.logger.Info("salesforce source initialized",
		zap.String("instance_url", s.client.BaseURL()),
		zap.Strings("sobjects", sc.Kinds),
		zap.Int("concurrency", sc.Concurrency),
		zap.Bool("text_extraction", sc.UseTextExtraction))
	return nil
}

// Validate checks the settings without network access.
func (s *Source) Validate() error {
	if s.config == nil {
		return errors.New(errors.ErrorTypeConfig, "source is not initialized")
	}
	return s.config.Validate()
}

// Ping checks that the instance URL answers.
func (s *Source) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.New(errors.ErrorTypeConfig, "source is not initialized")
	}
	return s.client.Ping(ctx)
}

// Client exposes the API client for raw record access.
func (s *Source) Client() *Client {
	return s.client
}

func (s *Source) Close(ctx context.Context) error {
	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}

// Documents starts one sync pass. Entity documents are streamed as their
// pages arrive; content documents follow once every entity stream is done.
func (s *Source) Documents(ctx context.Context) (*core.DocumentStream, error) {
	if s.client == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "source is not initialized")
	}

	docs := make(chan core.Document, documentBufferSize)
	errs := make(chan error, 1)

	jobID := uuid.NewString()
	ctx = logger.WithJobID(ctx, jobID)

	go func() {
		defer close(errs)
		defer close(docs)
		if err := s.sync(ctx, jobID, docs); err != nil {
			errs <- err
		}
	}()

	return &core.DocumentStream{Documents: docs, Errors: errs}, nil
}

// counter tallies emitted documents per type.
type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *counter) inc(kind string) {
	c.mu.Lock()
	c.counts[kind]++
	c.mu.Unlock()
}

func (c *counter) fields() []zap.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]string, 0, len(c.counts))
	for k := range c.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fields := make([]zap.Field, 0, len(kinds))
	for _, k := range kinds {
		fields = append(fields, zap.Int(k, c.counts[k]))
	}
	return fields
}

func (s *Source) sync(ctx context.Context, jobID string, out chan<- core.Document) (err error) {
	ctx, span := observability.StartSpan(ctx, "salesforce.sync",
		attribute.String("job_id", jobID),
		attribute.StringSlice("sobjects", s.config.Kinds))
	timer := metrics.NewTimer()
	log := logger.FromContext(ctx, s.logger)
	counts := &counter{counts: make(map[string]int)}

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		s.metrics.SyncFinished(outcome, timer.Stop())
		observability.EndSpan(span, err)
	}()

	log.Info("sync pass started", zap.Strings("sobjects", s.config.Kinds))

	emit := func(ctx context.Context, doc core.Document) error {
		select {
		case out <- doc:
			kind := doc.Type()
			counts.inc(kind)
			s.metrics.DocumentEmitted(kind)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	run := NewRunContext(s.client)
	linker := NewContentLinker()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, kind := range s.config.Kinds {
		g.Go(func() error {
			return s.streamKind(gctx, run, linker, kind, emit)
		})
	}
	// Every parent stream must finish before the linked set of any content
	// document is complete.
	if err := g.Wait(); err != nil {
		return err
	}

	for _, content := range linker.Documents() {
		doc := s.mapper.MapContentDocument(content)
		if err := s.fetcher.attach(ctx, doc, content.Document); err != nil {
			return err
		}
		if err := emit(ctx, doc); err != nil {
			return err
		}
	}

	log.Info("sync pass finished", append(counts.fields(), zap.Duration("elapsed", timer.Stop()))...)
	return nil
}

func (s *Source) streamKind(ctx context.Context, run *RunContext, linker *ContentLinker, kind string, emit func(context.Context, core.Document) error) error {
	c := s.client
	switch kind {
	case KindAccount:
		return drain(c.Accounts(ctx, run), func(a *Account) error {
			linker.Add(a.ID.Value, a.Links())
			return emit(ctx, s.mapper.MapAccount(a))
		})
	case KindOpportunity:
		return drain(c.Opportunities(ctx, run), func(o *Opportunity) error {
			linker.Add(o.ID.Value, o.Links())
			return emit(ctx, s.mapper.MapOpportunity(o))
		})
	case KindContact:
		return drain(c.Contacts(ctx, run), func(ct *Contact) error {
			linker.Add(ct.ID.Value, ct.Links())
			return emit(ctx, s.mapper.MapContact(ct))
		})
	case KindLead:
		return drain(c.Leads(ctx, run), func(l *Lead) error {
			linker.Add(l.ID.Value, l.Links())
			return emit(ctx, s.mapper.MapLead(l))
		})
	case KindCampaign:
		return drain(c.Campaigns(ctx, run), func(cp *Campaign) error {
			linker.Add(cp.ID.Value, cp.Links())
			return emit(ctx, s.mapper.MapCampaign(cp))
		})
	case KindCase:
		return drain(c.Cases(ctx, run), func(cs *Case) error {
			linker.Add(cs.ID.Value, cs.Links())
			return emit(ctx, s.mapper.MapCase(cs))
		})
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown sobject kind %q", kind)
	}
}

// drain consumes seq, stopping at the first error from seq or fn.
func drain[T any](seq iter.Seq2[*T, error], fn func(*T) error) error {
	for rec, err := range seq {
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
