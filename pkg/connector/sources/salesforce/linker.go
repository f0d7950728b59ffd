package salesforce

import (
	"sort"
	"sync"
)

// LinkedContent is one distinct content document with every parent record
// that links to it.
type LinkedContent struct {
	Document *ContentDocument
	// LinkedIDs is sorted and free of duplicates
	LinkedIDs []string
}

type linkedEntry struct {
	document *ContentDocument
	parents  map[string]struct{}
}

// ContentLinker collapses content document links gathered from every parent
// stream into one entry per content document. Add may be called from
// concurrent producers; Documents must only be called once they are done.
type ContentLinker struct {
	mu      sync.Mutex
	entries map[string]*linkedEntry
	order   []string
}

func NewContentLinker() *ContentLinker {
	return &ContentLinker{entries: make(map[string]*linkedEntry)}
}

// Add records links found on the parent record parentID. A link that
// carries its own LinkedEntityID is attributed to that record instead.
func (l *ContentLinker) Add(parentID string, links []ContentDocumentLink) {
	if len(links) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, link := range links {
		doc := link.ContentDocument
		if doc == nil || doc.ID.Value == "" {
			continue
		}
		parent := parentID
		if link.LinkedEntityID.Valid && link.LinkedEntityID.Value != "" {
			parent = link.LinkedEntityID.Value
		}

		entry, ok := l.entries[doc.ID.Value]
		if !ok {
			entry = &linkedEntry{document: doc, parents: make(map[string]struct{})}
			l.entries[doc.ID.Value] = entry
			l.order = append(l.order, doc.ID.Value)
		}
		if parent != "" {
			entry.parents[parent] = struct{}{}
		}
	}
}

// Len returns the number of distinct content documents seen.
func (l *ContentLinker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Documents returns the distinct content documents in first-seen order.
func (l *ContentLinker) Documents() []LinkedContent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LinkedContent, 0, len(l.order))
	for _, id := range l.order {
		entry := l.entries[id]
		linked := make([]string, 0, len(entry.parents))
		for parent := range entry.parents {
			linked = append(linked, parent)
		}
		sort.Strings(linked)
		out = append(out, LinkedContent{Document: entry.document, LinkedIDs: linked})
	}
	return out
}
