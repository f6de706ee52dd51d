package dedup

import (
	"reflect"
	"testing"

	"github.com/promptdex/promptdex/catalog"
	"github.com/promptdex/promptdex/fingerprint"
)

func TestAdd_DistinctContent(t *testing.T) {
	// WHAT: Records with distinct stripped content produce distinct entries
	// in arrival order.
	tbl := NewTable()
	tbl.Ingest([]catalog.Record{
		{Title: "T1", Author: "a", Content: "one"},
		{Title: "T2", Author: "b", Content: "two"},
	})
	entries := tbl.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Title != "T1" || entries[1].Title != "T2" {
		t.Errorf("order lost: %q, %q", entries[0].Title, entries[1].Title)
	}
	if entries[0].Fingerprint != fingerprint.Fingerprint("one") {
		t.Errorf("fingerprint mismatch")
	}
}

func TestAdd_WhitespaceVariantsCollide(t *testing.T) {
	// WHAT: Layout-only content variants merge into a single entry with the
	// first-seen title and content preserved.
	tbl := NewTable()
	tbl.Add(catalog.Record{Title: "first", Author: "a", Content: "hello world"})
	tbl.Add(catalog.Record{Title: "second", Author: "b", Content: "hello\nworld"})

	entries := tbl.Entries()
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Title != "first" || entries[0].Content != "hello world" {
		t.Errorf("first-seen title/content not retained: %+v", entries[0])
	}
}

func TestAdd_AnonymousNeverOverridesNamed(t *testing.T) {
	// WHAT: Anonymous-then-Alice and Alice-then-anonymous both end at Alice.
	// WHY: The anonymous marker is a placeholder, not an identity.
	for _, order := range [][]catalog.Record{
		{
			{Author: catalog.AnonymousAuthor, Content: "C"},
			{Author: "Alice", Content: "C"},
		},
		{
			{Author: "Alice", Content: "C"},
			{Author: catalog.AnonymousAuthor, Content: "C"},
		},
	} {
		tbl := NewTable()
		tbl.Ingest(order)
		if got := tbl.Entries()[0].Author; got != "Alice" {
			t.Errorf("author = %q, want Alice (order %+v)", got, order)
		}
	}
}

func TestAdd_FirstNamedAuthorWins(t *testing.T) {
	// WHAT: Two named authors on the same content keep the first seen.
	tbl := NewTable()
	tbl.Add(catalog.Record{Author: "Alice", Content: "C"})
	tbl.Add(catalog.Record{Author: "Bob", Content: "C"})
	if got := tbl.Entries()[0].Author; got != "Alice" {
		t.Errorf("author = %q, want Alice", got)
	}
}

func TestAdd_TagUnion(t *testing.T) {
	// WHAT: Tag sets union monotonically, keeping first-seen order without
	// duplicates.
	tbl := NewTable()
	tbl.Add(catalog.Record{Tags: []string{"a", "b"}, Content: "C"})
	tbl.Add(catalog.Record{Tags: []string{"b", "c"}, Content: "C"})

	got := tbl.Entries()[0].Tags
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("tags = %v, want [a b c]", got)
	}
}
