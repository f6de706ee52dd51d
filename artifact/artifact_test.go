package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/promptdex/promptdex/fingerprint"
)

func TestLoadBlacklist(t *testing.T) {
	// WHAT: Blank lines and # comments are skipped; the rest are members.
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	content := "# banned fingerprints\n\nabc123\n  def456  \n# trailing comment\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set := LoadBlacklist(path, nil)
	if len(set) != 2 || !set.Has("abc123") || !set.Has("def456") {
		t.Errorf("set = %v", set)
	}
}

func TestLoadBlacklist_MissingFile(t *testing.T) {
	// WHAT: A missing blacklist degrades to an empty set, not an error.
	set := LoadBlacklist(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if len(set) != 0 {
		t.Errorf("set = %v, want empty", set)
	}
}

func TestLoadExisting_RefingerprintsContent(t *testing.T) {
	// WHAT: Prior records are keyed by re-fingerprinted content; other
	// fields (including a stored hash) are ignored.
	path := filepath.Join(t.TempDir(), "prompts.json")
	prior := `[
		{"title":"T","author":"A","tags":["x"],"content":"hello world","hash":"ignored"},
		{"content":"另一个"}
	]`
	if err := os.WriteFile(path, []byte(prior), 0o644); err != nil {
		t.Fatal(err)
	}

	set := LoadExisting(path, nil)
	if len(set) != 2 {
		t.Fatalf("set = %v", set)
	}
	if !set.Has(fingerprint.Fingerprint("hello world")) || !set.Has(fingerprint.Fingerprint("另一个")) {
		t.Errorf("fingerprints missing from set")
	}
}

func TestLoadExisting_CorruptFile(t *testing.T) {
	// WHAT: Corrupt prior output degrades to empty (run proceeds as first).
	path := filepath.Join(t.TempDir(), "prompts.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if set := LoadExisting(path, nil); len(set) != 0 {
		t.Errorf("set = %v, want empty", set)
	}
}

func TestWriteOutput_SchemaAndAtomicity(t *testing.T) {
	// WHAT: The output file is a JSON array with the five-field schema and
	// no leftover .tmp file.
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "prompts.json")
	records := []OutputRecord{
		{Title: "T", Author: "A", Tags: []string{"x", "y"}, Content: "c", Hash: "h"},
	}
	if err := WriteOutput(path, records); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(got) != 1 || got[0]["hash"] != "h" || got[0]["title"] != "T" {
		t.Errorf("got = %v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("tmp file left behind")
	}
}

func TestWriteStats(t *testing.T) {
	// WHAT: Stats serialize with the expected field names and a float
	// last_updated.
	path := filepath.Join(t.TempDir(), "stats.json")
	err := WriteStats(path, &Stats{
		TotalPrompts: 2,
		TotalAuthors: 1,
		TotalTags:    3,
		TagFrequency: map[string]int{"x": 2},
		LastUpdated:  1714565000.25,
	})
	if err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	data, _ := os.ReadFile(path)
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_prompts", "total_authors", "total_tags", "tag_frequency", "last_updated"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %v", key, got)
		}
	}
	if got["last_updated"].(float64) != 1714565000.25 {
		t.Errorf("last_updated = %v", got["last_updated"])
	}
}
