// Package scheduler drives the daily polling cycle: fetch prices, upsert
// them, re-detect crossovers over the full history, filter against the
// ledger, record what is new, then notify.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"CrossWatch/internal/detector"
	"CrossWatch/internal/fetcher"
	"CrossWatch/internal/metrics"
	"CrossWatch/internal/model"
	"CrossWatch/internal/notifier"
	"CrossWatch/internal/store"

	"github.com/robfig/cron/v3"
)

// fetchBufferDays is the extra lookback added to incremental fetches so a
// few missed runs or provider gaps never leave holes; the price upsert
// makes the overlap harmless.
const fetchBufferDays = 5

// Scheduler manages the cron task and the per-ticker cycle.
type Scheduler struct {
	Cron        *cron.Cron
	Fetcher     fetcher.Fetcher
	Store       *store.Store
	Detector    *detector.Detector
	Router      *notifier.Router
	Metrics     *metrics.Metrics
	Tickers     []string
	HistoryDays int
	Ctx         context.Context
}

// New creates a Scheduler.
func New(ctx context.Context, f fetcher.Fetcher, st *store.Store, det *detector.Detector,
	router *notifier.Router, m *metrics.Metrics, tickers []string, historyDays int) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Fetcher:     f,
		Store:       st,
		Detector:    det,
		Router:      router,
		Metrics:     m,
		Tickers:     tickers,
		HistoryDays: historyDays,
		Ctx:         ctx,
	}
}

// Register registers the daily polling task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, func() { s.RunAll(false) }); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunAll executes one cycle for every configured ticker. Tickers are fully
// independent: a failing ticker is logged and the rest still run, and the
// failed one is retried in full on the next cron fire.
func (s *Scheduler) RunAll(full bool) {
	for _, ticker := range s.Tickers {
		if err := s.RunCycle(ticker, full); err != nil {
			log.Printf("[ERROR] poll cycle for %s: %v", ticker, err)
			s.Metrics.CycleErrors.Inc()
		}
	}
}

// RunCycle executes one fetch-detect-record-notify cycle for a ticker.
// Detection always re-scans the full stored history; the ledger filter is
// what keeps repeated cycles from re-emitting old signals, so with
// unchanged history the cycle converges to a no-op.
func (s *Scheduler) RunCycle(ticker string, full bool) error {
	s.Metrics.CyclesTotal.Inc()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	log.Printf("[INFO] poll cycle started for %s", ticker)

	days, err := s.fetchDays(ticker, full)
	if err != nil {
		return err
	}

	start := time.Now()
	bars, err := s.Fetcher.FetchDaily(ticker, days)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ticker, err)
	}
	s.Metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if len(bars) > 0 {
		written, err := s.Store.SavePrices(ticker, bars)
		if err != nil {
			return err
		}
		s.Metrics.PricesUpserted.Add(float64(written))
		log.Printf("[INFO] %s: saved %d bars", ticker, written)
	} else {
		log.Printf("[INFO] %s: no new data", ticker)
	}

	closes, err := s.Store.LoadCloses(ticker)
	if err != nil {
		return err
	}

	candidates := s.Detector.Detect(ticker, closes)
	for _, sig := range candidates {
		s.Metrics.SignalsDetected.WithLabelValues(ticker, string(sig.Kind)).Inc()
	}

	fresh, err := s.Store.FilterNew(ticker, candidates)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		log.Printf("[INFO] %s: no new crossover signals", ticker)
		return nil
	}

	// Record before notifying: a storage fault here aborts the cycle and
	// the full batch is retried next time, still unnotified.
	inserted, err := s.Store.RecordSignals(ticker, fresh)
	if err != nil {
		return err
	}
	for _, sig := range fresh {
		s.Metrics.SignalsRecorded.WithLabelValues(ticker, string(sig.Kind)).Inc()
	}
	log.Printf("[INFO] %s: recorded %d new crossover signal(s)", ticker, inserted)

	s.Router.Dispatch(s.Ctx, fresh, timestamp)
	return nil
}

func (s *Scheduler) fetchDays(ticker string, full bool) (int, error) {
	if full {
		return s.HistoryDays, nil
	}
	last, err := s.Store.LastDate(ticker)
	if err != nil {
		return 0, err
	}
	if last == "" {
		return s.HistoryDays, nil
	}
	lastDate, err := time.Parse(model.DateLayout, last)
	if err != nil {
		return s.HistoryDays, nil
	}
	days := int(time.Since(lastDate).Hours()/24) + fetchBufferDays
	if days > s.HistoryDays {
		days = s.HistoryDays
	}
	if days < fetchBufferDays {
		days = fetchBufferDays
	}
	return days, nil
}
