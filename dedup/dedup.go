// Package dedup collapses catalog records into one entry per content
// fingerprint, with field-level merge rules on collision.
package dedup

import (
	"github.com/promptdex/promptdex/catalog"
	"github.com/promptdex/promptdex/fingerprint"
)

// Entry is the merged form of all records sharing one fingerprint.
// Title and content are the first-seen values; the author is the first
// non-anonymous one; tags accumulate in first-seen order and never shrink.
type Entry struct {
	Title       string
	Author      string
	Tags        []string
	Content     string
	Fingerprint string

	tagSet map[string]struct{}
}

// Table is an insertion-ordered fingerprint → entry mapping. Iteration
// order is first-seen order, which the merge rules depend on. Not safe for
// concurrent use; the pipeline is single-threaded.
type Table struct {
	entries map[string]*Entry
	order   []string
}

// NewTable creates an empty merge table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Ingest adds records in strict arrival order.
func (t *Table) Ingest(records []catalog.Record) {
	for _, r := range records {
		t.Add(r)
	}
}

// Add inserts a record, merging into an existing entry on fingerprint
// collision.
func (t *Table) Add(r catalog.Record) {
	fp := fingerprint.Fingerprint(r.Content)
	e, ok := t.entries[fp]
	if !ok {
		e = &Entry{
			Title:       r.Title,
			Author:      r.Author,
			Content:     r.Content,
			Fingerprint: fp,
			tagSet:      make(map[string]struct{}),
		}
		t.entries[fp] = e
		t.order = append(t.order, fp)
	} else if e.Author == catalog.AnonymousAuthor && r.Author != catalog.AnonymousAuthor {
		// First non-anonymous author wins; ties keep the first seen.
		e.Author = r.Author
	}

	for _, tag := range r.Tags {
		if _, seen := e.tagSet[tag]; seen {
			continue
		}
		e.tagSet[tag] = struct{}{}
		e.Tags = append(e.Tags, tag)
	}
}

// Entries returns the merged entries in first-seen order.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.order))
	for _, fp := range t.order {
		out = append(out, t.entries[fp])
	}
	return out
}

// Len reports the number of distinct fingerprints.
func (t *Table) Len() int { return len(t.order) }
