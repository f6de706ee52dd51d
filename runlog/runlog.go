// Package runlog persists a per-run event trail to a local sqlite database:
// catalog fetches, gate decisions, moderation verdicts, artifact writes.
//
// The ledger is diagnostic, not load-bearing: insert failures are logged
// via slog and never propagate, so a broken ledger cannot fail a run.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/promptdex/promptdex/idgen"
)

// Event stages recorded by the pipeline.
const (
	StageCatalogFetch    = "catalog_fetch"
	StageMerge           = "merge"
	StageGateRejected    = "gate_rejected"
	StageAlreadyVerified = "already_verified"
	StageModerationPass  = "moderation_pass"
	StageModerationFail  = "moderation_fail"
	StageArtifactsWrite  = "artifacts_write"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_events (
	event_id   TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	entity     TEXT,
	detail     TEXT,
	success    INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, stage);
`

// Logger writes events for one pipeline run.
type Logger struct {
	db      *sql.DB
	runID   string
	newID   idgen.Generator
	slogger *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithIDGenerator sets a custom event ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Logger) { l.newID = gen }
}

// Open opens (or creates) the ledger database at path with WAL enabled.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	return db, nil
}

// NewLogger creates a Logger scoped to a fresh run ID.
func NewLogger(db *sql.DB, logger *slog.Logger, opts ...Option) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{
		db:      db,
		runID:   idgen.Prefixed("run_", idgen.Default)(),
		newID:   idgen.Prefixed("evt_", idgen.Default),
		slogger: logger,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RunID returns the identifier of the run this Logger records under.
func (l *Logger) RunID() string { return l.runID }

// Event records one event. A nil Logger is a no-op so callers never need a
// nil check; insert errors are logged and swallowed.
func (l *Logger) Event(ctx context.Context, stage, entity, detail string, success bool) {
	if l == nil {
		return
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO run_events (event_id, run_id, stage, entity, detail, success, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		l.newID(), l.runID, stage, entity, detail, boolToInt(success),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		l.slogger.Warn("runlog: insert failed", "stage", stage, "error", err)
	}
}

// CountByStage returns how many events of one stage this run recorded.
func (l *Logger) CountByStage(ctx context.Context, stage string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_events WHERE run_id = ? AND stage = ?`,
		l.runID, stage).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("runlog: count: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
