package observe

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteObserver appends every node record to a SQLite-backed run
// history. Unlike the reference project's SQLite store, this is not a
// resumable checkpoint store — resuming partial runs is out of scope
// for this core — it is a plain append-only audit log, queryable after
// the fact (see cmd/dagobert-inspect).
//
// The underlying table is created, if absent, by NewSQLiteObserver:
//
//	CREATE TABLE IF NOT EXISTS node_records (
//	    id INTEGER PRIMARY KEY AUTOINCREMENT,
//	    run_id TEXT NOT NULL,
//	    node TEXT NOT NULL,
//	    status TEXT NOT NULL,
//	    waiting_ms INTEGER NOT NULL,
//	    elapsed_execution_ms INTEGER NOT NULL,
//	    elapsed_total_ms INTEGER NOT NULL,
//	    input_json TEXT,
//	    return_json TEXT
//	)
type SQLiteObserver struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteObserver opens (creating if necessary) the SQLite database at
// path and prepares its history table. path may be ":memory:" for
// ephemeral use in tests.
func NewSQLiteObserver(path string) (*SQLiteObserver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS node_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			node TEXT NOT NULL,
			status TEXT NOT NULL,
			waiting_ms INTEGER NOT NULL,
			elapsed_execution_ms INTEGER NOT NULL,
			elapsed_total_ms INTEGER NOT NULL,
			input_json TEXT,
			return_json TEXT
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create node_records table: %w", err)
	}

	return &SQLiteObserver{db: db}, nil
}

func (s *SQLiteObserver) Observe(rec Record) {
	inputJSON, _ := json.Marshal(rec.Input)
	returnJSON, _ := json.Marshal(stringifyReturn(rec.Return))

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.db.Exec(`
		INSERT INTO node_records
			(run_id, node, status, waiting_ms, elapsed_execution_ms, elapsed_total_ms, input_json, return_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Node, string(rec.Status), rec.WaitingMs, rec.ElapsedExecutionMs, rec.ElapsedTotalMs,
		string(inputJSON), string(returnJSON))
}

// Close releases the underlying database connection.
func (s *SQLiteObserver) Close() error {
	return s.db.Close()
}

// stringifyReturn renders error-typed returns (status=failed) as their
// message so they survive a JSON round-trip instead of marshaling to
// "{}".
func stringifyReturn(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
