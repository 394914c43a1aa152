// Package runstore persists a record of each synthesis run — operand
// sizes, the resulting supervisor's size, how long it took and whether it
// succeeded — to either an in-memory store or a SQLite-backed one, mirroring
// the append-only event store shape used elsewhere in this codebase without
// adopting its stream/version model, which does not fit a single
// synthesis call.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load when no run with the given id exists.
var ErrNotFound = errors.New("runstore: run not found")

// RunRecord summarizes a single synthesis call.
type RunRecord struct {
	RunID                 string
	StartedAt             time.Time
	Duration              time.Duration
	PlantStates           uint64
	SpecStates            uint64
	SupervisorStates      uint64
	SupervisorTransitions uint64
	UncontrollableCount   uint
	Err                   string // empty on success
}

// Store persists RunRecords. Implementations must be safe for concurrent
// use.
type Store interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	Load(ctx context.Context, runID string) (*RunRecord, error)
	ListRuns(ctx context.Context) ([]*RunRecord, error)
	Close() error
}

// MemoryStore is an in-process Store backed by a map, suitable for tests
// and short-lived tooling.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*RunRecord)}
}

// SaveRun implements Store.
func (m *MemoryStore) SaveRun(_ context.Context, rec *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *rec
	m.runs[rec.RunID] = &copied
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, runID string) (*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

// ListRuns implements Store, returning runs in no particular order.
func (m *MemoryStore) ListRuns(_ context.Context) ([]*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*RunRecord, 0, len(m.runs))
	for _, rec := range m.runs {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

// Close implements Store; MemoryStore holds no resources to release.
func (m *MemoryStore) Close() error { return nil }

// SQLiteStore is a Store backed by a SQLite database, for persisting run
// history across process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path
// and ensures its schema exists. Pass ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runstore: open %q: %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	run_id                 TEXT PRIMARY KEY,
	started_at             INTEGER NOT NULL,
	duration_ns            INTEGER NOT NULL,
	plant_states           INTEGER NOT NULL,
	spec_states            INTEGER NOT NULL,
	supervisor_states      INTEGER NOT NULL,
	supervisor_transitions INTEGER NOT NULL,
	uncontrollable_count   INTEGER NOT NULL,
	err                    TEXT NOT NULL DEFAULT ''
);`
	_, err := s.db.Exec(ddl)
	return err
}

// SaveRun implements Store, upserting by run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	const stmt = `
INSERT INTO runs (run_id, started_at, duration_ns, plant_states, spec_states, supervisor_states, supervisor_transitions, uncontrollable_count, err)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
	started_at = excluded.started_at,
	duration_ns = excluded.duration_ns,
	plant_states = excluded.plant_states,
	spec_states = excluded.spec_states,
	supervisor_states = excluded.supervisor_states,
	supervisor_transitions = excluded.supervisor_transitions,
	uncontrollable_count = excluded.uncontrollable_count,
	err = excluded.err;`
	_, err := s.db.ExecContext(ctx, stmt,
		rec.RunID, rec.StartedAt.UnixNano(), int64(rec.Duration),
		rec.PlantStates, rec.SpecStates, rec.SupervisorStates, rec.SupervisorTransitions,
		rec.UncontrollableCount, rec.Err)
	if err != nil {
		return fmt.Errorf("runstore: save %q: %w", rec.RunID, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, runID string) (*RunRecord, error) {
	const q = `
SELECT run_id, started_at, duration_ns, plant_states, spec_states, supervisor_states, supervisor_transitions, uncontrollable_count, err
FROM runs WHERE run_id = ?;`
	row := s.db.QueryRowContext(ctx, q, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: load %q: %w", runID, err)
	}
	return rec, nil
}

// ListRuns implements Store, returning runs ordered by start time.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*RunRecord, error) {
	const q = `
SELECT run_id, started_at, duration_ns, plant_states, spec_states, supervisor_states, supervisor_transitions, uncontrollable_count, err
FROM runs ORDER BY started_at ASC;`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("runstore: list: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runstore: list: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunRecord, error) {
	var rec RunRecord
	var startedAtNanos int64
	var durationNanos int64
	if err := sc.Scan(
		&rec.RunID, &startedAtNanos, &durationNanos,
		&rec.PlantStates, &rec.SpecStates, &rec.SupervisorStates, &rec.SupervisorTransitions,
		&rec.UncontrollableCount, &rec.Err,
	); err != nil {
		return nil, err
	}
	rec.StartedAt = time.Unix(0, startedAtNanos)
	rec.Duration = time.Duration(durationNanos)
	return &rec, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*SQLiteStore)(nil)
