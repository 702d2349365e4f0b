package store

import (
	"time"

	"CrossWatch/internal/model"
)

// FilterNew returns the subset of candidates whose (ticker, date, kind)
// key is not yet in the ledger, preserving input order.
func (s *Store) FilterNew(ticker string, candidates []model.CrossoverSignal) ([]model.CrossoverSignal, error) {
	stmt, err := s.db.Prepare(`SELECT 1 FROM crossover_signals WHERE ticker = ? AND date = ? AND signal_type = ?`)
	if err != nil {
		return nil, storageErr("filter new: prepare", err)
	}
	defer stmt.Close()

	var fresh []model.CrossoverSignal
	for _, sig := range candidates {
		var one int
		err := stmt.QueryRow(ticker, sig.Date, string(sig.Kind)).Scan(&one)
		switch {
		case err == nil:
			// already recorded
		case isNoRows(err):
			fresh = append(fresh, sig)
		default:
			return nil, storageErr("filter new: lookup", err)
		}
	}
	return fresh, nil
}

// RecordSignals appends signals to the ledger with insert-or-ignore
// semantics: a key that already exists is a silent no-op and does not
// count toward the returned insert count. The batch is committed
// atomically; on fault nothing is written and the whole batch is retried
// on the next cycle.
func (s *Store) RecordSignals(ticker string, signals []model.CrossoverSignal) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, storageErr("record signals: begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO crossover_signals
		(ticker, date, signal_type, close_price, ma_short, ma_long)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return 0, storageErr("record signals: prepare", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, sig := range signals {
		res, err := stmt.Exec(ticker, sig.Date, string(sig.Kind), sig.Close, sig.ShortMA, sig.LongMA)
		if err != nil {
			return 0, storageErr("record signals: insert", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, storageErr("record signals: rows affected", err)
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("record signals: commit", err)
	}
	return inserted, nil
}

// RecentSignals returns up to limit ledger entries for a ticker, most
// recent date first.
func (s *Store) RecentSignals(ticker string, limit int) ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(`SELECT date, signal_type, close_price, ma_short, ma_long, created_at
		FROM crossover_signals WHERE ticker = ? ORDER BY date DESC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, storageErr("recent signals", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var kind, created string
		if err := rows.Scan(&e.Date, &kind, &e.Close, &e.ShortMA, &e.LongMA, &created); err != nil {
			return nil, storageErr("recent signals: scan", err)
		}
		e.Ticker = ticker
		e.Kind = model.SignalKind(kind)
		if ts, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("recent signals: iterate", err)
	}
	return entries, nil
}
