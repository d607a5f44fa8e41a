// Package storage handles the SQLite usage-accounting database.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Blank import: registers the SQLite driver.
	// In Go, importing a package for its side effects (init function) is done
	// with `_`. The sqlite3 package registers itself as a database/sql driver.
)

// Schema is embedded directly in the binary — no migration files need to
// exist at runtime.
const schema = `
CREATE TABLE IF NOT EXISTS queries (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    query         TEXT NOT NULL,
    provider      TEXT NOT NULL DEFAULT '',
    llm_provider  TEXT NOT NULL DEFAULT '',
    llm_model     TEXT NOT NULL DEFAULT '',
    success       BOOLEAN NOT NULL DEFAULT 0,
    error_message TEXT,
    duration_ms   INTEGER,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_queries_provider ON queries(provider);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
`

// NewDatabase creates a new SQLite connection and runs migrations.
// sqlx wraps database/sql with convenience methods like StructScan and NamedExec.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	// The DSN configures SQLite pragmas:
	// - WAL mode: allows concurrent reads while writing
	// - busy_timeout: wait up to 5s instead of failing on lock contention
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
