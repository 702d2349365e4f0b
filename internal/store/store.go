// Package store persists per-ticker price history and the append-only
// crossover signal ledger in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrStorage marks a storage-layer fault. Callers treat it as retryable:
// the next polling cycle re-runs detection and the ledger's idempotence
// prevents duplicate notification once storage recovers.
var ErrStorage = errors.New("storage fault")

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Store wraps the SQLite database holding both tables.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so status queries can read while a poll cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

// Schema statements, shared with cmd/migrate which rebuilds legacy
// single-ticker databases into this shape.
var SchemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS prices (
		ticker    TEXT NOT NULL,
		date      TEXT NOT NULL,
		open      REAL,
		high      REAL,
		low       REAL,
		close     REAL,
		adj_close REAL,
		volume    INTEGER,
		PRIMARY KEY (ticker, date)
	)`,

	`CREATE TABLE IF NOT EXISTS crossover_signals (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker      TEXT NOT NULL,
		date        TEXT NOT NULL,
		signal_type TEXT NOT NULL,
		close_price REAL,
		ma_short    REAL,
		ma_long     REAL,
		created_at  TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(ticker, date, signal_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_ticker_date ON crossover_signals(ticker, date)`,
}

func (s *Store) migrate() error {
	for _, stmt := range SchemaStmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
