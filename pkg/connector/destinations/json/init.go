package json

import (
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/registry"
)

func init() {
	// Register JSON destination in the global registry
	_ = registry.RegisterDestination(registry.ConnectorInfo{
		Name:        DestinationName,
		Description: "Line-delimited or array JSON file, optionally compressed",
		Settings:    []string{"path", "format", "pretty", "indent"},
	}, NewDestination)
}
