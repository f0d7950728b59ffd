// Package registry maps connector type names to factories so the CLI and the
// sync service can build connectors from a configuration file alone.
package registry

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/logger"
)

// SourceFactory creates a source connector. Initialize is called by the
// registry, so factories only allocate.
type SourceFactory func(config *config.BaseConfig) (core.Source, error)

// DestinationFactory creates a destination connector.
type DestinationFactory func(config *config.BaseConfig) (core.Destination, error)

// ConnectorInfo describes a registered connector for listing.
type ConnectorInfo struct {
	Name        string             `json:"name"`
	Kind        core.ConnectorType `json:"kind"`
	Description string             `json:"description"`
	// Settings names the credential keys the connector reads
	Settings []string `json:"settings,omitempty"`
}

type sourceEntry struct {
	info    ConnectorInfo
	factory SourceFactory
}

type destinationEntry struct {
	info    ConnectorInfo
	factory DestinationFactory
}

// Registry manages connector registration and instantiation
type Registry struct {
	mu           sync.RWMutex
	sources      map[string]sourceEntry
	destinations map[string]destinationEntry
	logger       *zap.Logger
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sources:      make(map[string]sourceEntry),
		destinations: make(map[string]destinationEntry),
		logger:       logger.Get().With(zap.String("component", "connector_registry")),
	}
}

// RegisterSource registers a source factory under info.Name.
func (r *Registry) RegisterSource(info ConnectorInfo, factory SourceFactory) error {
	if info.Name == "" || factory == nil {
		return errors.New(errors.ErrorTypeConfig, "source registration needs a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[info.Name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "source connector %s already registered", info.Name)
	}
	info.Kind = core.ConnectorTypeSource
	r.sources[info.Name] = sourceEntry{info: info, factory: factory}
	r.logger.Debug("source connector registered", zap.String("name", info.Name))
	return nil
}

// RegisterDestination registers a destination factory under info.Name.
func (r *Registry) RegisterDestination(info ConnectorInfo, factory DestinationFactory) error {
	if info.Name == "" || factory == nil {
		return errors.New(errors.ErrorTypeConfig, "destination registration needs a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.destinations[info.Name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "destination connector %s already registered", info.Name)
	}
	info.Kind = core.ConnectorTypeDestination
	r.destinations[info.Name] = destinationEntry{info: info, factory: factory}
	r.logger.Debug("destination connector registered", zap.String("name", info.Name))
	return nil
}

// CreateSource builds and initializes the source registered as cfg.Type.
func (r *Registry) CreateSource(ctx context.Context, cfg *config.BaseConfig) (core.Source, error) {
	r.mu.RLock()
	entry, exists := r.sources[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source connector %s not found", cfg.Type)
	}

	source, err := entry.factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create source connector "+cfg.Type)
	}
	if err := source.Initialize(ctx, cfg); err != nil {
		return nil, err
	}
	return source, nil
}

// CreateDestination builds and initializes the destination registered as cfg.Type.
func (r *Registry) CreateDestination(ctx context.Context, cfg *config.BaseConfig) (core.Destination, error) {
	r.mu.RLock()
	entry, exists := r.destinations[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "destination connector %s not found", cfg.Type)
	}

	destination, err := entry.factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create destination connector "+cfg.Type)
	}
	if err := destination.Initialize(ctx, cfg); err != nil {
		return nil, err
	}
	return destination, nil
}

// List returns every registered connector, sources first, each group sorted by name.
func (r *Registry) List() []ConnectorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]ConnectorInfo, 0, len(r.sources))
	for _, e := range r.sources {
		sources = append(sources, e.info)
	}
	destinations := make([]ConnectorInfo, 0, len(r.destinations))
	for _, e := range r.destinations {
		destinations = append(destinations, e.info)
	}
	byName := func(infos []ConnectorInfo) {
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	}
	byName(sources)
	byName(destinations)
	return append(sources, destinations...)
}

// HasSource checks if a source connector is registered
func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[name]
	return ok
}

// HasDestination checks if a destination connector is registered
func (r *Registry) HasDestination(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.destinations[name]
	return ok
}

// RegisterSource registers a source connector in the global registry
func RegisterSource(info ConnectorInfo, factory SourceFactory) error {
	return globalRegistry.RegisterSource(info, factory)
}

// RegisterDestination registers a destination connector in the global registry
func RegisterDestination(info ConnectorInfo, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(info, factory)
}

// CreateSource creates a source connector from the global registry
func CreateSource(ctx context.Context, cfg *config.BaseConfig) (core.Source, error) {
	return globalRegistry.CreateSource(ctx, cfg)
}

// CreateDestination creates a destination connector from the global registry
func CreateDestination(ctx context.Context, cfg *config.BaseConfig) (core.Destination, error) {
	return globalRegistry.CreateDestination(ctx, cfg)
}

// List returns the connectors in the global registry
func List() []ConnectorInfo {
	return globalRegistry.List()
}

// GetRegistry returns the global registry instance.
func GetRegistry() *Registry {
	return globalRegistry
}
