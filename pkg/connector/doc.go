// Package connector is the root of the connector framework. It holds no code
// of its own; the sub-packages split the work:
//
//   - core: the Source and Destination interfaces and the Document type every
//     connector exchanges.
//
//   - base: shared plumbing for connectors, the retry policy and the periodic
//     health checker.
//
//   - registry: maps a configuration's type name to a factory so binaries can
//     build connectors from a YAML file alone. Connectors register themselves
//     in init.
//
//   - sources: bundled source connectors. salesforce reads accounts,
//     opportunities, contacts, leads, campaigns, cases and their files.
//
//   - destinations: bundled destination connectors. json writes documents as
//     JSON lines or a JSON array, optionally compressed.
//
// # Example Usage
//
//	cfg := config.NewBaseConfig("crm", "salesforce")
//	cfg.Security.Credentials["domain"] = "acme"
//	cfg.Security.Credentials["client_id"] = os.Getenv("SF_CLIENT_ID")
//	cfg.Security.Credentials["client_secret"] = os.Getenv("SF_CLIENT_SECRET")
//
//	source, err := registry.CreateSource(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer source.Close(ctx)
//
//	stream, err := source.Documents(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = stream.Drain(func(doc core.Document) error {
//		fmt.Println(doc.Type(), doc.ID())
//		return nil
//	})
//
// A Documents call is one sync pass. Documents arrive grouped by type, with
// content documents last, and the stream carries at most one terminal error.
package connector
