// Package destinations links the bundled destination connectors into a
// binary. Importing it registers every destination with the connector
// registry.
package destinations

import (
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/destinations/json"
)

// NewJSONDestination creates a JSON file destination connector.
func NewJSONDestination(config *config.BaseConfig) (core.Destination, error) {
	return json.NewDestination(config)
}
