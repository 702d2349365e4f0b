package store

import "CrossWatch/internal/model"

// SavePrices upserts daily bars for a ticker, keyed by (ticker, date).
// Re-saving an existing date overwrites it, so repeated fetches of
// overlapping ranges are harmless. Returns the number of rows written.
func (s *Store) SavePrices(ticker string, bars []model.OHLCV) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, storageErr("save prices: begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO prices
		(ticker, date, open, high, low, close, adj_close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, storageErr("save prices: prepare", err)
	}
	defer stmt.Close()

	written := 0
	for _, b := range bars {
		if _, err := stmt.Exec(ticker, b.DateString(), b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume); err != nil {
			return 0, storageErr("save prices: insert", err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("save prices: commit", err)
	}
	return written, nil
}

// LoadCloses returns a ticker's full closing series, ascending by date.
// De-duplication by date is guaranteed by the primary key.
func (s *Store) LoadCloses(ticker string) ([]model.ClosePoint, error) {
	rows, err := s.db.Query(`SELECT date, close FROM prices WHERE ticker = ? ORDER BY date`, ticker)
	if err != nil {
		return nil, storageErr("load closes", err)
	}
	defer rows.Close()

	var closes []model.ClosePoint
	for rows.Next() {
		var p model.ClosePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, storageErr("load closes: scan", err)
		}
		closes = append(closes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load closes: iterate", err)
	}
	return closes, nil
}

// LastDate returns the most recent stored date for a ticker, or "" when
// the ticker has no history yet.
func (s *Store) LastDate(ticker string) (string, error) {
	var last *string
	err := s.db.QueryRow(`SELECT MAX(date) FROM prices WHERE ticker = ?`, ticker).Scan(&last)
	if err != nil {
		return "", storageErr("last date", err)
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

// PriceCount returns the number of stored bars for a ticker.
func (s *Store) PriceCount(ticker string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM prices WHERE ticker = ?`, ticker).Scan(&n); err != nil {
		return 0, storageErr("price count", err)
	}
	return n, nil
}

// DateRange returns the earliest and latest stored dates for a ticker.
// Both are "" when the ticker has no history.
func (s *Store) DateRange(ticker string) (min, max string, err error) {
	var lo, hi *string
	err = s.db.QueryRow(`SELECT MIN(date), MAX(date) FROM prices WHERE ticker = ?`, ticker).Scan(&lo, &hi)
	if err != nil {
		return "", "", storageErr("date range", err)
	}
	if lo != nil {
		min = *lo
	}
	if hi != nil {
		max = *hi
	}
	return min, max, nil
}

// Tickers lists every ticker with stored price history.
func (s *Store) Tickers() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT ticker FROM prices ORDER BY ticker`)
	if err != nil {
		return nil, storageErr("tickers", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, storageErr("tickers: scan", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("tickers: iterate", err)
	}
	return tickers, nil
}
