package model

import "time"

// SignalKind identifies the direction of a moving-average crossover.
type SignalKind string

const (
	// GoldenCross: short MA crossed from at-or-below to strictly above the long MA.
	GoldenCross SignalKind = "GOLDEN_CROSS"
	// DeadCross: short MA crossed from above to at-or-below the long MA.
	DeadCross SignalKind = "DEAD_CROSS"
)

// CrossoverSignal is a dated trend-reversal event for one ticker.
// Immutable once recorded in the ledger.
type CrossoverSignal struct {
	Ticker  string     `json:"ticker"`
	Date    string     `json:"date"`
	Kind    SignalKind `json:"signal_type"`
	Close   float64    `json:"close_price"`
	ShortMA float64    `json:"ma_short"`
	LongMA  float64    `json:"ma_long"`
}

// LedgerEntry is a recorded signal plus its persistence timestamp.
type LedgerEntry struct {
	CrossoverSignal
	CreatedAt time.Time `json:"created_at"`
}

// TrendStatus is the current bullish/bearish classification of a ticker.
type TrendStatus string

const (
	StatusBullish          TrendStatus = "BULLISH"
	StatusBearish          TrendStatus = "BEARISH"
	StatusInsufficientData TrendStatus = "INSUFFICIENT_DATA"
)

// StatusSnapshot is the current-trend view of a ticker, recomputed on
// every query and never persisted. MA fields are zero when Status is
// INSUFFICIENT_DATA.
type StatusSnapshot struct {
	Ticker  string      `json:"ticker"`
	Date    string      `json:"date,omitempty"`
	Status  TrendStatus `json:"status"`
	Close   float64     `json:"close,omitempty"`
	ShortMA float64     `json:"ma_short,omitempty"`
	LongMA  float64     `json:"ma_long,omitempty"`
	Gap     float64     `json:"gap,omitempty"`
}
