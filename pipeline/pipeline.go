// Package pipeline sequences the run: admission gates, moderation, output
// accumulation, and statistics.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/promptdex/promptdex/artifact"
	"github.com/promptdex/promptdex/dedup"
	"github.com/promptdex/promptdex/fingerprint"
	"github.com/promptdex/promptdex/runlog"
)

// Moderator decides textual compliance. Satisfied by *moderation.Client.
type Moderator interface {
	IsCompliant(ctx context.Context, text string) bool
}

// Pipeline gates and moderates merged entries into the output dataset.
type Pipeline struct {
	moderator Moderator
	blacklist artifact.Set
	existing  artifact.Set
	logger    *slog.Logger
	events    *runlog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunLog attaches a run ledger; nil disables it.
func WithRunLog(l *runlog.Logger) Option {
	return func(p *Pipeline) { p.events = l }
}

// New creates a Pipeline over the given admission sets.
func New(mod Moderator, blacklist, existing artifact.Set, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if blacklist == nil {
		blacklist = make(artifact.Set)
	}
	if existing == nil {
		existing = make(artifact.Set)
	}
	p := &Pipeline{
		moderator: mod,
		blacklist: blacklist,
		existing:  existing,
		logger:    logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes merged entries in table order and returns the accepted
// records. Per entry: blacklist, then already-seen, then moderation over
// the whitespace-stripped content. Drops are logged, never fatal.
func (p *Pipeline) Run(ctx context.Context, entries []*dedup.Entry) []artifact.OutputRecord {
	records := make([]artifact.OutputRecord, 0, len(entries))
	for _, e := range entries {
		switch Gate(e.Fingerprint, p.blacklist, p.existing) {
		case Rejected:
			p.logger.Info("pipeline: entry blacklisted", "title", e.Title, "hash", e.Fingerprint)
			p.events.Event(ctx, runlog.StageGateRejected, e.Fingerprint, e.Title, false)
			continue
		case AlreadyVerified:
			p.events.Event(ctx, runlog.StageAlreadyVerified, e.Fingerprint, e.Title, true)
			records = append(records, toOutput(e))
		case NeedsModeration:
			if !p.moderator.IsCompliant(ctx, fingerprint.Strip(e.Content)) {
				p.logger.Info("pipeline: entry non-compliant, dropped",
					"title", e.Title, "hash", e.Fingerprint)
				p.events.Event(ctx, runlog.StageModerationFail, e.Fingerprint, e.Title, false)
				continue
			}
			p.events.Event(ctx, runlog.StageModerationPass, e.Fingerprint, e.Title, true)
			records = append(records, toOutput(e))
		}
	}
	p.logger.Info("pipeline: run complete",
		"entries", len(entries), "accepted", len(records))
	return records
}

func toOutput(e *dedup.Entry) artifact.OutputRecord {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return artifact.OutputRecord{
		Title:   e.Title,
		Author:  e.Author,
		Tags:    tags,
		Content: e.Content,
		Hash:    e.Fingerprint,
	}
}

// BuildStats summarizes an output dataset: totals, distinct authors and
// tags, and per-tag frequency. last_updated is stamped at call time.
func BuildStats(records []artifact.OutputRecord) *artifact.Stats {
	authors := make(map[string]struct{})
	freq := make(map[string]int)
	for _, r := range records {
		authors[r.Author] = struct{}{}
		for _, tag := range r.Tags {
			freq[tag]++
		}
	}
	return &artifact.Stats{
		TotalPrompts: len(records),
		TotalAuthors: len(authors),
		TotalTags:    len(freq),
		TagFrequency: freq,
		LastUpdated:  artifact.Now(),
	}
}
