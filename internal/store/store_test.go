package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"CrossWatch/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func bars(start time.Time, closes ...float64) []model.OHLCV {
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{
			Date:     start.AddDate(0, 0, i),
			Open:     c - 1,
			High:     c + 1,
			Low:      c - 2,
			Close:    c,
			AdjClose: c,
			Volume:   1000000,
		}
	}
	return out
}

var day0 = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func TestSavePrices_UpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	b := bars(day0, 50, 51, 52)
	if _, err := s.SavePrices("TQQQ", b); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SavePrices("TQQQ", b); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	count, err := s.PriceCount("TQQQ")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows after duplicate save, got %d", count)
	}
}

func TestSavePrices_OverwriteSameDate(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SavePrices("TQQQ", bars(day0, 50)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SavePrices("TQQQ", bars(day0, 55)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	closes, err := s.LoadCloses("TQQQ")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(closes) != 1 || closes[0].Close != 55 {
		t.Errorf("expected single overwritten close 55, got %+v", closes)
	}
}

func TestLoadCloses_OrderedAscending(t *testing.T) {
	s := openTestStore(t)

	// Insert out of order: the read contract sorts by date.
	later := bars(day0.AddDate(0, 0, 2), 52)
	if _, err := s.SavePrices("TQQQ", later); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SavePrices("TQQQ", bars(day0, 50, 51)); err != nil {
		t.Fatal(err)
	}

	closes, err := s.LoadCloses("TQQQ")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(closes) != 3 {
		t.Fatalf("expected 3 closes, got %d", len(closes))
	}
	for i := 1; i < len(closes); i++ {
		if closes[i].Date <= closes[i-1].Date {
			t.Errorf("closes not ascending: %s then %s", closes[i-1].Date, closes[i].Date)
		}
	}
}

func TestLastDateAndRange(t *testing.T) {
	s := openTestStore(t)

	last, err := s.LastDate("TQQQ")
	if err != nil {
		t.Fatalf("last date: %v", err)
	}
	if last != "" {
		t.Errorf("expected empty last date for unknown ticker, got %q", last)
	}

	if _, err := s.SavePrices("TQQQ", bars(day0, 50, 51, 52)); err != nil {
		t.Fatal(err)
	}
	last, err = s.LastDate("TQQQ")
	if err != nil {
		t.Fatalf("last date: %v", err)
	}
	if want := day0.AddDate(0, 0, 2).Format(model.DateLayout); last != want {
		t.Errorf("last date = %q, want %q", last, want)
	}

	min, max, err := s.DateRange("TQQQ")
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	if min != day0.Format(model.DateLayout) || max != last {
		t.Errorf("range = %q..%q", min, max)
	}
}

func testSignal(ticker, date string, kind model.SignalKind) model.CrossoverSignal {
	return model.CrossoverSignal{
		Ticker:  ticker,
		Date:    date,
		Kind:    kind,
		Close:   52.5,
		ShortMA: 51.2,
		LongMA:  50.9,
	}
}

func TestRecordSignals_InsertOrIgnore(t *testing.T) {
	s := openTestStore(t)
	sig := testSignal("TQQQ", "2025-03-03", model.GoldenCross)

	n, err := s.RecordSignals("TQQQ", []model.CrossoverSignal{sig})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n != 1 {
		t.Errorf("first record insert count = %d, want 1", n)
	}

	n, err = s.RecordSignals("TQQQ", []model.CrossoverSignal{sig})
	if err != nil {
		t.Fatalf("re-record: %v", err)
	}
	if n != 0 {
		t.Errorf("duplicate record insert count = %d, want 0", n)
	}

	entries, err := s.RecentSignals("TQQQ", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger must hold exactly one row for the key, got %d", len(entries))
	}
	if entries[0].Kind != model.GoldenCross || entries[0].Date != "2025-03-03" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestFilterNew_Converges(t *testing.T) {
	s := openTestStore(t)
	candidates := []model.CrossoverSignal{
		testSignal("TQQQ", "2025-03-03", model.GoldenCross),
		testSignal("TQQQ", "2025-04-14", model.DeadCross),
	}

	fresh, err := s.FilterNew("TQQQ", candidates)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected both candidates fresh, got %d", len(fresh))
	}
	// Input order preserved.
	if fresh[0].Date != "2025-03-03" || fresh[1].Date != "2025-04-14" {
		t.Errorf("filter must preserve order, got %+v", fresh)
	}

	if _, err := s.RecordSignals("TQQQ", fresh); err != nil {
		t.Fatalf("record: %v", err)
	}

	fresh, err = s.FilterNew("TQQQ", candidates)
	if err != nil {
		t.Fatalf("second filter: %v", err)
	}
	if len(fresh) != 0 {
		t.Errorf("expected convergence to empty after record, got %+v", fresh)
	}
}

// The same (date, kind) key under different tickers must be independent.
func TestLedger_TickerIsolation(t *testing.T) {
	s := openTestStore(t)

	a := testSignal("TQQQ", "2025-03-03", model.GoldenCross)
	if _, err := s.RecordSignals("TQQQ", []model.CrossoverSignal{a}); err != nil {
		t.Fatalf("record TQQQ: %v", err)
	}

	b := testSignal("SOXL", "2025-03-03", model.GoldenCross)
	fresh, err := s.FilterNew("SOXL", []model.CrossoverSignal{b})
	if err != nil {
		t.Fatalf("filter SOXL: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("SOXL candidate must be unaffected by TQQQ ledger, got %d fresh", len(fresh))
	}

	n, err := s.RecordSignals("SOXL", fresh)
	if err != nil {
		t.Fatalf("record SOXL: %v", err)
	}
	if n != 1 {
		t.Errorf("SOXL insert count = %d, want 1", n)
	}

	tq, _ := s.RecentSignals("TQQQ", 10)
	sx, _ := s.RecentSignals("SOXL", 10)
	if len(tq) != 1 || len(sx) != 1 {
		t.Errorf("per-ticker ledgers: TQQQ=%d SOXL=%d, want 1 and 1", len(tq), len(sx))
	}
}

func TestPrices_TickerIsolation(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.SavePrices("TQQQ", bars(day0, 50, 51)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SavePrices("SOXL", bars(day0, 20)); err != nil {
		t.Fatal(err)
	}

	tq, err := s.LoadCloses("TQQQ")
	if err != nil {
		t.Fatal(err)
	}
	sx, err := s.LoadCloses("SOXL")
	if err != nil {
		t.Fatal(err)
	}
	if len(tq) != 2 || len(sx) != 1 {
		t.Errorf("per-ticker closes: TQQQ=%d SOXL=%d, want 2 and 1", len(tq), len(sx))
	}

	tickers, err := s.Tickers()
	if err != nil {
		t.Fatal(err)
	}
	if len(tickers) != 2 || tickers[0] != "SOXL" || tickers[1] != "TQQQ" {
		t.Errorf("tickers = %v", tickers)
	}
}

func TestStorageFaultIsMarked(t *testing.T) {
	s := openTestStore(t)
	s.Close()

	_, err := s.LoadCloses("TQQQ")
	if err == nil {
		t.Fatal("expected error on closed store")
	}
	if !errors.Is(err, ErrStorage) {
		t.Errorf("storage fault must wrap ErrStorage, got %v", err)
	}
}
