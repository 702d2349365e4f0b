// Prints the current trend snapshot and recent ledger entries per ticker.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"CrossWatch/internal/config"
	"CrossWatch/internal/detector"
	"CrossWatch/internal/model"
	"CrossWatch/internal/store"
)

func main() {
	log.SetFlags(0)

	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	ticker := flag.String("ticker", "", "show a single ticker instead of all tracked ones")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
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

	var tickers []string
	if *ticker != "" {
		tickers = []string{strings.ToUpper(*ticker)}
	} else {
		tickers, err = st.Tickers()
		if err != nil {
			log.Fatalf("[FATAL] list tickers: %v", err)
		}
		if len(tickers) == 0 {
			tickers = cfg.Tickers
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("CROSSWATCH STATUS")
	fmt.Println(strings.Repeat("=", 50))

	for _, t := range tickers {
		printTicker(st, det, t)
	}
}

func printTicker(st *store.Store, det *detector.Detector, ticker string) {
	count, err := st.PriceCount(ticker)
	if err != nil {
		log.Fatalf("[FATAL] price count for %s: %v", ticker, err)
	}
	min, max, err := st.DateRange(ticker)
	if err != nil {
		log.Fatalf("[FATAL] date range for %s: %v", ticker, err)
	}

	fmt.Printf("\n--- %s ---\n", ticker)
	fmt.Printf("Database: %d price records\n", count)
	if count > 0 {
		fmt.Printf("Date Range: %s to %s\n", min, max)
	}

	closes, err := st.LoadCloses(ticker)
	if err != nil {
		log.Fatalf("[FATAL] load closes for %s: %v", ticker, err)
	}
	snap := det.Status(ticker, closes)

	if snap.Status == model.StatusInsufficientData {
		fmt.Println("\nNot enough data to calculate moving averages")
	} else {
		emoji := "🔴"
		if snap.Status == model.StatusBullish {
			emoji = "🟢"
		}
		fmt.Printf("\n%s Current Status: %s\n", emoji, snap.Status)
		fmt.Printf("  Date:     %s\n", snap.Date)
		fmt.Printf("  Close:    $%.2f\n", snap.Close)
		fmt.Printf("  Short MA: $%.2f\n", snap.ShortMA)
		fmt.Printf("  Long MA:  $%.2f\n", snap.LongMA)
		fmt.Printf("  Gap:      $%.2f\n", snap.Gap)
	}

	recent, err := st.RecentSignals(ticker, 5)
	if err != nil {
		log.Fatalf("[FATAL] recent signals for %s: %v", ticker, err)
	}
	if len(recent) > 0 {
		fmt.Println("\nRecent Signals:")
		fmt.Println(strings.Repeat("-", 50))
		for _, e := range recent {
			emoji, name := "🔴", "Dead Cross"
			if e.Kind == model.GoldenCross {
				emoji, name = "🟢", "Golden Cross"
			}
			fmt.Printf("  %s %s: %s @ $%.2f\n", emoji, e.Date, name, e.Close)
		}
	}
}
