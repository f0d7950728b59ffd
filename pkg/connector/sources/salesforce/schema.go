package salesforce

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Reference tables cached per run, with the fields each one keeps.
var cachedSObjectFields = map[string][]string{
	"Account":     {"Name"},
	"User":        {"Name", "Email"},
	"Opportunity": {"Name"},
	"Contact":     {"Name"},
}

// once memoizes one remote discovery. Concurrent callers wait for the
// first call and share its result, including its error.
type once[T any] struct {
	o   sync.Once
	val T
	err error
}

func (o *once[T]) do(fn func() (T, error)) (T, error) {
	o.o.Do(func() { o.val, o.err = fn() })
	return o.val, o.err
}

// RunContext holds the discovery results and reference caches of one sync
// pass. It is safe for concurrent use, every remote discovery runs at most
// once, and nothing is invalidated before the run ends.
type RunContext struct {
	client *Client
	logger *zap.Logger

	queryable once[map[string]bool]

	mu     sync.Mutex
	fields map[string]*once[map[string]bool]
	caches map[string]*once[map[string]Reference]
}

// NewRunContext creates an empty run context bound to client.
func NewRunContext(client *Client) *RunContext {
	return &RunContext{
		client: client,
		logger: client.logger.With(zap.String("component", "run_context")),
		fields: make(map[string]*once[map[string]bool]),
		caches: make(map[string]*once[map[string]Reference]),
	}
}

// IsQueryable reports whether the org lets these credentials query sobject.
func (r *RunContext) IsQueryable(ctx context.Context, sobject string) (bool, error) {
	names, err := r.queryable.do(func() (map[string]bool, error) {
		var payload describeGlobal
		if err := r.client.getJSON(ctx, r.client.dataPath("/sobjects"), nil, endpointDescribe, &payload); err != nil {
			return nil, err
		}
		names := make(map[string]bool, len(payload.SObjects))
		for _, so := range payload.SObjects {
			if so.Queryable {
				names[so.Name] = true
			}
		}
		r.logger.Debug("queryable sobjects discovered", zap.Int("count", len(names)))
		return names, nil
	})
	if err != nil {
		return false, err
	}
	return names[sobject], nil
}

// SelectQueryableFields keeps the requested fields the org exposes on
// sobject, in the requested order.
func (r *RunContext) SelectQueryableFields(ctx context.Context, sobject string, requested []string) ([]string, error) {
	r.mu.Lock()
	entry, ok := r.fields[sobject]
	if !ok {
		entry = &once[map[string]bool]{}
		r.fields[sobject] = entry
	}
	r.mu.Unlock()

	available, err := entry.do(func() (map[string]bool, error) {
		var payload describeSObject
		path := r.client.dataPath("/sobjects/" + url.PathEscape(sobject) + "/describe")
		if err := r.client.getJSON(ctx, path, nil, endpointDescribe, &payload); err != nil {
			return nil, err
		}
		available := make(map[string]bool, len(payload.Fields))
		for _, f := range payload.Fields {
			available[f.Name] = true
		}
		return available, nil
	})
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(requested))
	for _, field := range requested {
		if available[field] {
			selected = append(selected, field)
		}
	}
	return selected, nil
}

// SObjectsCacheByType returns the id-keyed reference table for sobject,
// querying it in full on first use. A type that is not queryable yields an
// empty table.
func (r *RunContext) SObjectsCacheByType(ctx context.Context, sobject string) (map[string]Reference, error) {
	r.mu.Lock()
	entry, ok := r.caches[sobject]
	if !ok {
		entry = &once[map[string]Reference]{}
		r.caches[sobject] = entry
	}
	r.mu.Unlock()

	return entry.do(func() (map[string]Reference, error) {
		return r.prepareCache(ctx, sobject)
	})
}

func (r *RunContext) prepareCache(ctx context.Context, sobject string) (map[string]Reference, error) {
	cache := make(map[string]Reference)

	queryable, err := r.IsQueryable(ctx, sobject)
	if err != nil || !queryable {
		return cache, err
	}
	fields, err := r.SelectQueryableFields(ctx, sobject, cachedSObjectFields[sobject])
	if err != nil {
		return nil, err
	}

	soql := NewQueryBuilder(sobject).WithID().WithFields(fields...).Build()
	err = queryPages(ctx, r.client, soql, func(page []Reference) error {
		for _, ref := range page {
			if ref.ID.Valid {
				cache[ref.ID.Value] = ref
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("reference cache built", zap.String("sobject", sobject), zap.Int("records", len(cache)))
	return cache, nil
}

// lookup resolves id in the cache for sobject. It returns nil when the id
// is empty or unknown.
func (r *RunContext) lookup(ctx context.Context, sobject string, id Text) (*Reference, error) {
	if !id.Valid || id.Value == "" {
		return nil, nil
	}
	cache, err := r.SObjectsCacheByType(ctx, sobject)
	if err != nil {
		return nil, err
	}
	ref, ok := cache[id.Value]
	if !ok {
		return nil, nil
	}
	return &ref, nil
}
