// Package kibanaconnectors syncs CRM records into flat, search-indexable
// documents.
//
// The Salesforce source authenticates with the OAuth client-credentials flow,
// discovers which objects and fields the org exposes, pages through SOQL
// queries and normalizes accounts, opportunities, contacts, leads, campaigns,
// cases and their attached files into documents tagged with a type. Files
// linked from several records are emitted once with every linked id.
//
// # Layout
//
//	cmd/kibana-connectors    CLI: version, list, validate, ping, sync, serve
//	internal/pipeline        source to destination pass with transforms
//	internal/service         multi-service runner, periodic sync, metrics endpoint
//	pkg/connector/...        interfaces, registry, Salesforce source, JSON destination
//	pkg/clients              HTTP transport, rate limiting, OAuth token manager
//	pkg/compression          stream compression for output files
//	pkg/config               YAML configuration shared by every connector
//	pkg/errors               typed errors with retry classification
//	pkg/logger               zap logging with job id propagation
//	pkg/metrics              Prometheus collectors
//	pkg/observability        OpenTelemetry tracing
//
// # Quick Start
//
//	# salesforce.yaml
//	name: crm
//	type: salesforce
//	security:
//	  credentials:
//	    domain: acme
//	    client_id: ${SF_CLIENT_ID}
//	    client_secret: ${SF_CLIENT_SECRET}
//	advanced:
//	  compression_algorithm: zstd
//
//	$ kibana-connectors sync -c salesforce.yaml -o docs.jsonl
//	$ kibana-connectors serve -c salesforce.yaml --interval 1h --metrics-address :9090
//
// Any connector setting can also come from a KC_<SETTING> environment
// variable, for example KC_CLIENT_SECRET.
package kibanaconnectors
