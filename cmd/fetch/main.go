// One-shot poll cycle: fetch prices, detect crossovers, record new
// signals, and notify. Meant for cron-less setups and manual runs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"CrossWatch/internal/config"
	"CrossWatch/internal/detector"
	"CrossWatch/internal/fetcher"
	"CrossWatch/internal/metrics"
	"CrossWatch/internal/notifier"
	"CrossWatch/internal/registry"
	"CrossWatch/internal/scheduler"
	"CrossWatch/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags)

	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	full := flag.Bool("full", false, "fetch the full history window instead of an incremental update")
	ticker := flag.String("ticker", "", "run for a single ticker instead of all configured ones")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	for _, dir := range []string{filepath.Dir(cfg.Database.SQLitePath), filepath.Dir(cfg.Notifications.EventsLogPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("[FATAL] create directory %s: %v", dir, err)
		}
	}

	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	det, err := detector.New(cfg.Signal.ShortWindow, cfg.Signal.LongWindow)
	if err != nil {
		log.Fatalf("[FATAL] init detector: %v", err)
	}

	reg := registry.New(cfg.Notifications.WebhooksFile)
	router := notifier.NewRouter(
		notifier.NewConsoleNotifier(),
		notifier.NewFileLogNotifier(cfg.Notifications.EventsLogPath),
		notifier.NewWebhookNotifier(cfg.Notifications.WebhookURL, reg),
	)

	tickers := cfg.Tickers
	if *ticker != "" {
		tickers = []string{strings.ToUpper(*ticker)}
	}

	sched := scheduler.New(context.Background(), fetcher.NewYahooFetcher(cfg.Proxy),
		st, det, router, metrics.New(), tickers, cfg.Signal.HistoryDays)

	for _, t := range tickers {
		if err := sched.RunCycle(t, *full); err != nil {
			log.Printf("[ERROR] poll cycle for %s: %v", t, err)
			continue
		}
		count, _ := st.PriceCount(t)
		min, max, _ := st.DateRange(t)
		log.Printf("[INFO] %s: %d price records, range %s to %s", t, count, min, max)
	}
}
