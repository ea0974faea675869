// Package store persists run artifacts in SQLite so a later run's
// velocity layer can compute month-over-month deltas. Metrics are
// append-only historical facts.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adoptioncheck/radar/internal/core"
	"github.com/adoptioncheck/radar/internal/velocity"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS source_metrics (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	technology      TEXT NOT NULL,
	source          TEXT NOT NULL,
	collected_at    TEXT NOT NULL,
	primary_count   INTEGER NOT NULL,
	secondary_count INTEGER NOT NULL,
	fetch_succeeded INTEGER NOT NULL,
	UNIQUE(technology, source, collected_at)
);
CREATE INDEX IF NOT EXISTS idx_metrics_tech_source
	ON source_metrics(technology, source, collected_at);
CREATE TABLE IF NOT EXISTS scored_records (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	technology       TEXT NOT NULL,
	list_name        TEXT NOT NULL,
	category         TEXT NOT NULL,
	confidence       TEXT NOT NULL,
	hype_flag        INTEGER NOT NULL,
	hype_reasons     TEXT NOT NULL,
	divergence_ratio REAL,
	sources_present  INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scored_list ON scored_records(list_name, created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run identifies one pipeline invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
}

// SaveRun appends one run's metrics and scored records in a single
// transaction. Metrics with FetchSucceeded=false are stored too: a
// failed fetch is a historical fact, distinct from a zero count.
func (s *Store) SaveRun(run Run, metrics []core.SourceMetric, scored []core.ScoredRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range metrics {
		succeeded := 0
		if m.FetchSucceeded {
			succeeded = 1
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO source_metrics
			 (run_id, technology, source, collected_at, primary_count, secondary_count, fetch_succeeded)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, m.Technology, string(m.Source), m.CollectedAt.UTC().Format(time.RFC3339Nano),
			m.PrimaryCount, m.SecondaryCount, succeeded,
		); err != nil {
			return fmt.Errorf("insert metric %s/%s: %w", m.Technology, m.Source, err)
		}
	}

	for _, rec := range scored {
		reasons, err := json.Marshal(rec.HypeReasons)
		if err != nil {
			return fmt.Errorf("encode hype reasons: %w", err)
		}

		var ratio sql.NullFloat64
		if rec.Divergence != nil {
			ratio = sql.NullFloat64{Float64: rec.Divergence.Ratio, Valid: true}
		}

		hype := 0
		if rec.HypeFlag {
			hype = 1
		}

		if _, err := tx.Exec(
			`INSERT INTO scored_records
			 (run_id, technology, list_name, category, confidence, hype_flag, hype_reasons, divergence_ratio, sources_present, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, rec.Technology, rec.List, rec.Category, string(rec.Confidence),
			hype, string(reasons), ratio, rec.SourcesPresent,
			rec.CollectedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert scored record %s: %w", rec.Technology, err)
		}
	}

	return tx.Commit()
}

// PrimaryHistory returns the successful primary-count series for a
// technology and source since the given time, oldest first.
func (s *Store) PrimaryHistory(technology string, source core.Source, since time.Time) ([]velocity.Point, error) {
	return s.history(technology, source, since, "primary_count")
}

// SecondaryHistory is PrimaryHistory for the secondary count.
func (s *Store) SecondaryHistory(technology string, source core.Source, since time.Time) ([]velocity.Point, error) {
	return s.history(technology, source, since, "secondary_count")
}

func (s *Store) history(technology string, source core.Source, since time.Time, column string) ([]velocity.Point, error) {
	// column is one of two fixed identifiers, never caller input.
	query := fmt.Sprintf(
		`SELECT collected_at, %s FROM source_metrics
		 WHERE technology = ? AND source = ? AND fetch_succeeded = 1 AND collected_at >= ?
		 ORDER BY collected_at ASC`, column)

	rows, err := s.db.Query(query, technology, string(source), since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []velocity.Point
	for rows.Next() {
		var at string
		var value int64
		if err := rows.Scan(&at, &value); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", at, err)
		}
		points = append(points, velocity.Point{At: t, Value: float64(value)})
	}
	return points, rows.Err()
}

// LatestScores returns the scored records of the most recent run that
// covered the given list.
func (s *Store) LatestScores(list string) ([]core.ScoredRecord, error) {
	rows, err := s.db.Query(
		`SELECT technology, list_name, category, confidence, hype_flag, hype_reasons, divergence_ratio, sources_present, created_at
		 FROM scored_records
		 WHERE list_name = ? AND run_id = (
			SELECT run_id FROM scored_records WHERE list_name = ?
			ORDER BY created_at DESC LIMIT 1
		 )`, list, list)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.ScoredRecord
	for rows.Next() {
		var rec core.ScoredRecord
		var hype int
		var reasons string
		var ratio sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&rec.Technology, &rec.List, &rec.Category, &rec.Confidence,
			&hype, &reasons, &ratio, &rec.SourcesPresent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan scored record: %w", err)
		}

		rec.HypeFlag = hype == 1
		rec.RankEligible = rec.SourcesPresent > 0
		if err := json.Unmarshal([]byte(reasons), &rec.HypeReasons); err != nil {
			return nil, fmt.Errorf("decode hype reasons: %w", err)
		}
		if ratio.Valid {
			rec.Divergence = &core.Divergence{Ratio: ratio.Float64, A: core.SourceNPM, B: core.SourcePyPI}
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CollectedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
