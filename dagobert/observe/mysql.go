package observe

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLObserver is the MySQL-backed sibling of SQLiteObserver, for
// teams running a shared history database rather than a per-process
// file. dsn follows go-sql-driver/mysql's DSN format, e.g.
// "user:pass@tcp(127.0.0.1:3306)/dagobert".
type MySQLObserver struct {
	db *sql.DB
	mu sync.Mutex
}

// NewMySQLObserver opens a connection pool against dsn and ensures its
// history table exists.
func NewMySQLObserver(dsn string) (*MySQLObserver, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS node_records (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			node VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL,
			waiting_ms BIGINT NOT NULL,
			elapsed_execution_ms BIGINT NOT NULL,
			elapsed_total_ms BIGINT NOT NULL,
			input_json TEXT,
			return_json TEXT,
			INDEX idx_run_id (run_id)
		) ENGINE=InnoDB`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create node_records table: %w", err)
	}

	return &MySQLObserver{db: db}, nil
}

func (m *MySQLObserver) Observe(rec Record) {
	inputJSON, _ := json.Marshal(rec.Input)
	returnJSON, _ := json.Marshal(stringifyReturn(rec.Return))

	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = m.db.Exec(`
		INSERT INTO node_records
			(run_id, node, status, waiting_ms, elapsed_execution_ms, elapsed_total_ms, input_json, return_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Node, string(rec.Status), rec.WaitingMs, rec.ElapsedExecutionMs, rec.ElapsedTotalMs,
		string(inputJSON), string(returnJSON))
}

// Close releases the underlying connection pool.
func (m *MySQLObserver) Close() error {
	return m.db.Close()
}
