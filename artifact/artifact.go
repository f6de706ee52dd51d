// Package artifact reads and writes the pipeline's persistent files: the
// fingerprint blacklist, the prior output dataset, and the run's output
// dataset plus statistics.
//
// Readers degrade: a missing or corrupt file logs and yields an empty set,
// so a first run and a damaged state directory behave the same. Writers are
// atomic (write .tmp, then rename) to prevent partial reads by consumers.
package artifact

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/promptdex/promptdex/fingerprint"
)

// OutputRecord is one accepted prompt in the output dataset.
type OutputRecord struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
	Hash    string   `json:"hash"`
}

// Stats summarizes one produced dataset.
type Stats struct {
	TotalPrompts int            `json:"total_prompts"`
	TotalAuthors int            `json:"total_authors"`
	TotalTags    int            `json:"total_tags"`
	TagFrequency map[string]int `json:"tag_frequency"`
	LastUpdated  float64        `json:"last_updated"` // epoch seconds
}

// Set is a fingerprint membership set.
type Set map[string]struct{}

// Has reports membership.
func (s Set) Has(fp string) bool {
	_, ok := s[fp]
	return ok
}

// LoadBlacklist reads a newline-delimited fingerprint file. Blank lines and
// lines starting with # are skipped. A read failure degrades to an empty
// set after a log line.
func LoadBlacklist(path string, logger *slog.Logger) Set {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(Set)

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("artifact: blacklist unavailable, proceeding without",
			"path", path, "error", err)
		return set
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		logger.Warn("artifact: blacklist read error", "path", path, "error", err)
	}
	return set
}

// LoadExisting reads a prior output dataset and re-fingerprints each
// record's content to build the already-verified set. Only the content
// field is consumed; everything else in the file is ignored. A missing or
// corrupt file degrades to an empty set after a log line.
func LoadExisting(path string, logger *slog.Logger) Set {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(Set)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info("artifact: no prior output, treating all entries as new",
			"path", path, "error", err)
		return set
	}

	var prior []struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &prior); err != nil {
		logger.Warn("artifact: prior output unreadable, treating all entries as new",
			"path", path, "error", err)
		return set
	}

	for _, rec := range prior {
		set[fingerprint.Fingerprint(rec.Content)] = struct{}{}
	}
	return set
}

// WriteOutput persists the output dataset as a JSON array.
func WriteOutput(path string, records []OutputRecord) error {
	return writeJSON(path, records)
}

// WriteStats persists the statistics summary.
func WriteStats(path string, stats *Stats) error {
	return writeJSON(path, stats)
}

// Now returns the current time as float epoch seconds, the stats
// last_updated representation.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("artifact: mkdir %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact: rename: %w", err)
	}
	return nil
}
