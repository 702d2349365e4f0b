package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"CrossWatch/internal/detector"
	"CrossWatch/internal/fetcher"
	"CrossWatch/internal/metrics"
	"CrossWatch/internal/model"
	"CrossWatch/internal/notifier"
	"CrossWatch/internal/store"
)

// captureNotifier records every signal handed to it.
type captureNotifier struct {
	mu      sync.Mutex
	signals []model.CrossoverSignal
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Notify(_ context.Context, sig model.CrossoverSignal, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = append(c.signals, sig)
	return nil
}

func goldenCrossBars() []model.OHLCV {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	prices := make([]float64, 0, 40)
	for i := 0; i < 35; i++ {
		prices = append(prices, 80-1.6*float64(i))
	}
	prices = append(prices, 40, 55, 70, 85, 100)

	bars := make([]model.OHLCV, len(prices))
	for i, p := range prices {
		bars[i] = model.OHLCV{Date: start.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, AdjClose: p, Volume: 1}
	}
	return bars
}

func newTestScheduler(t *testing.T, f fetcher.Fetcher, tickers []string) (*Scheduler, *store.Store, *captureNotifier) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	det, err := detector.New(5, 30)
	if err != nil {
		t.Fatalf("detector: %v", err)
	}

	capture := &captureNotifier{}
	s := New(context.Background(), f, st, det, notifier.NewRouter(capture), metrics.New(), tickers, 365)
	return s, st, capture
}

// Repeated cycles over unchanged history must record and notify the signal
// exactly once.
func TestRunCycle_ConvergesAndNotifiesOnce(t *testing.T) {
	mock := &fetcher.MockFetcher{Bars: goldenCrossBars()}
	s, st, capture := newTestScheduler(t, mock, []string{"TQQQ"})

	for i := 0; i < 3; i++ {
		if err := s.RunCycle("TQQQ", false); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}

	entries, err := st.RecentSignals("TQQQ", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger rows = %d, want 1 after repeated cycles", len(entries))
	}
	if entries[0].Kind != model.GoldenCross {
		t.Errorf("expected GOLDEN_CROSS in ledger, got %s", entries[0].Kind)
	}

	if len(capture.signals) != 1 {
		t.Fatalf("notified %d times, want exactly once", len(capture.signals))
	}
	if capture.signals[0].Ticker != "TQQQ" {
		t.Errorf("notified ticker = %s", capture.signals[0].Ticker)
	}
}

// Interleaved cycles across two tickers behave exactly like running each
// alone: one ledger entry and one notification per ticker.
func TestRunAll_TickersAreIsolated(t *testing.T) {
	mock := &fetcher.MockFetcher{Series: map[string][]model.OHLCV{
		"TQQQ": goldenCrossBars(),
		"SOXL": goldenCrossBars(),
	}}
	s, st, capture := newTestScheduler(t, mock, []string{"TQQQ", "SOXL"})

	s.RunAll(false)
	s.RunAll(false)

	for _, ticker := range []string{"TQQQ", "SOXL"} {
		entries, err := st.RecentSignals(ticker, 10)
		if err != nil {
			t.Fatalf("recent %s: %v", ticker, err)
		}
		if len(entries) != 1 {
			t.Errorf("%s ledger rows = %d, want 1", ticker, len(entries))
		}
	}
	if len(capture.signals) != 2 {
		t.Errorf("notified %d times, want 2 (once per ticker)", len(capture.signals))
	}
}

func TestRunCycle_FetchFailurePropagates(t *testing.T) {
	mock := &fetcher.MockFetcher{Err: errFetch}
	s, st, capture := newTestScheduler(t, mock, []string{"TQQQ"})

	if err := s.RunCycle("TQQQ", false); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if count, _ := st.PriceCount("TQQQ"); count != 0 {
		t.Errorf("no prices should be stored on fetch failure, got %d", count)
	}
	if len(capture.signals) != 0 {
		t.Errorf("no notifications on failed cycle, got %d", len(capture.signals))
	}
}

var errFetch = &fetchError{}

type fetchError struct{}

func (*fetchError) Error() string { return "provider unavailable" }
