package pipeline

import (
	"context"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
)

// FieldMapperTransform renames fields according to mapping. Unmapped fields
// are preserved.
//
// Example:
//
//	p.AddTransform(FieldMapperTransform(map[string]string{"body": "content"}))
func FieldMapperTransform(mapping map[string]string) Transform {
	return func(ctx context.Context, doc core.Document) (core.Document, error) {
		if len(mapping) == 0 {
			return doc, nil
		}
		renamed := make(core.Document, len(doc))
		for field, value := range doc {
			if to, ok := mapping[field]; ok {
				renamed[to] = value
				continue
			}
			renamed[field] = value
		}
		return renamed, nil
	}
}

// OmitFieldsTransform removes the given fields from every document.
func OmitFieldsTransform(fields ...string) Transform {
	return func(ctx context.Context, doc core.Document) (core.Document, error) {
		for _, field := range fields {
			delete(doc, field)
		}
		return doc, nil
	}
}

// FilterTransform drops documents for which predicate returns false.
//
// Example:
//
//	// Keep only open cases
//	p.AddTransform(FilterTransform(func(d core.Document) bool {
//	    closed, _ := d["is_closed"].(bool)
//	    return d.Type() == "case" && !closed
//	}))
func FilterTransform(predicate func(core.Document) bool) Transform {
	return func(ctx context.Context, doc core.Document) (core.Document, error) {
		if predicate(doc) {
			return doc, nil
		}
		return nil, nil
	}
}

// TypeFilterTransform keeps only documents whose type tag is listed.
func TypeFilterTransform(types ...string) Transform {
	keep := make(map[string]struct{}, len(types))
	for _, t := range types {
		keep[t] = struct{}{}
	}
	return FilterTransform(func(doc core.Document) bool {
		_, ok := keep[doc.Type()]
		return ok
	})
}
