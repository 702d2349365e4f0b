package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"CrossWatch/internal/api"
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
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CrossWatch starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
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

	// Open store. The ledger lives here; without it every cycle would
	// re-notify old signals, so failure is fatal rather than degraded.
	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	det, err := detector.New(cfg.Signal.ShortWindow, cfg.Signal.LongWindow)
	if err != nil {
		log.Fatalf("[FATAL] init detector: %v", err)
	}

	f := fetcher.NewYahooFetcher(cfg.Proxy)
	log.Printf("[INFO] data source: %s, tickers: %v", f.Name(), cfg.Tickers)

	reg := registry.New(cfg.Notifications.WebhooksFile)
	m := metrics.New()
	router := buildRouter(cfg, reg)
	router.OnFailure(m.NotifyFailures.Inc)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.New(ctx, f, st, det, router, m, cfg.Tickers, cfg.Signal.HistoryDays)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Control-plane API
	srv := api.NewServer(st, det, reg, m, cfg.Tickers)
	go func() {
		if err := srv.Run(cfg.API.ListenAddr); err != nil {
			log.Fatalf("[FATAL] API server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing poll cycle now")
		go sched.RunAll(false)
	}

	log.Println("[INFO] CrossWatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] CrossWatch stopped")
}

func buildRouter(cfg *config.Config, reg *registry.Registry) *notifier.Router {
	sinks := []notifier.Notifier{
		notifier.NewConsoleNotifier(),
		notifier.NewFileLogNotifier(cfg.Notifications.EventsLogPath),
		notifier.NewWebhookNotifier(cfg.Notifications.WebhookURL, reg),
	}
	if cfg.Notifications.DesktopEnabled {
		sinks = append(sinks, notifier.NewDesktopNotifier())
	}
	if cfg.Notifications.Email.Enabled {
		e := cfg.Notifications.Email
		sinks = append(sinks, notifier.NewEmailNotifier(e.Sender, e.Password, e.Recipient, e.SMTPHost, e.SMTPPort))
	}
	return notifier.NewRouter(sinks...)
}
