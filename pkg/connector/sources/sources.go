// Package sources links the bundled source connectors into a binary.
// Importing it registers every source with the connector registry.
package sources

import (
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/sources/salesforce"
)

// NewSalesforceSource creates a Salesforce source connector.
func NewSalesforceSource(name string, config *config.BaseConfig) (core.Source, error) {
	return salesforce.NewSalesforceSource(name, config)
}
