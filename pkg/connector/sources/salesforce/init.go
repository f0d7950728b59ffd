package salesforce

import (
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/registry"
)

func init() {
	// Register Salesforce source connector in the global registry
	_ = registry.RegisterSource(registry.ConnectorInfo{
		Name:        SourceName,
		Description: "Accounts, opportunities, contacts, leads, campaigns, cases and their files from the Salesforce REST API",
		Settings: []string{
			"domain", "client_id", "client_secret", "base_url", "api_version", "sobjects",
			"modified_since", "max_attachment_size", "concurrency",
			"use_text_extraction_service", "extraction_service_url",
		},
	}, func(cfg *config.BaseConfig) (core.Source, error) {
		return NewSalesforceSource(SourceName, cfg)
	})
}
