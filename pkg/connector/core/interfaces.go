package core

import (
	"context"
	"sort"

	"github.com/Mykobyhub/kibana-connectors/pkg/config"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

const (
	// FieldID is the stable identifier every document carries.
	FieldID = "_id"
	// FieldType tags the entity kind of a document.
	FieldType = "type"
	// FieldSource tags the platform a document came from.
	FieldSource = "source"
)

// Document is the canonical, flat, search-indexable output unit.
type Document map[string]interface{}

// ID returns the document identifier.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Type returns the entity kind tag.
func (d Document) Type() string {
	t, _ := d[FieldType].(string)
	return t
}

// Keys returns the field names in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DocumentStream carries documents and at most one terminal error. Both
// channels are closed when the producer is done.
type DocumentStream struct {
	Documents <-chan Document
	Errors    <-chan error
}

// Drain consumes the stream, calling fn for each document, and returns the
// first error from fn or from the producer.
func (s *DocumentStream) Drain(fn func(Document) error) error {
	var fnErr error
	for doc := range s.Documents {
		if fnErr != nil {
			continue
		}
		fnErr = fn(doc)
	}
	for err := range s.Errors {
		if err != nil && fnErr == nil {
			fnErr = err
		}
	}
	return fnErr
}

// Source is the interface that all source connectors must implement
type Source interface {
	// Initialize prepares the connector from its configuration
	Initialize(ctx context.Context, config *config.BaseConfig) error
	// Validate checks the configuration without network access
	Validate() error
	// Ping checks that the remote platform is reachable
	Ping(ctx context.Context) error
	// Documents runs one sync pass and streams its documents
	Documents(ctx context.Context) (*DocumentStream, error)
	Close(ctx context.Context) error
}

// Destination is the interface that all destination connectors must implement
type Destination interface {
	Initialize(ctx context.Context, config *config.BaseConfig) error
	// Write consumes the stream until it is closed
	Write(ctx context.Context, stream *DocumentStream) (int, error)
	Close(ctx context.Context) error
}
