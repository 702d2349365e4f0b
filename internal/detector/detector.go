// Package detector implements moving-average crossover detection over a
// ticker's ordered daily closing series. All functions are pure: they read
// the series they are given and touch no storage.
package detector

import (
	"fmt"

	"CrossWatch/internal/calculator"
	"CrossWatch/internal/model"
)

// Detector detects short/long SMA crossovers. Window sizes are validated
// once at construction and assumed valid afterwards.
type Detector struct {
	shortWindow int
	longWindow  int
}

// New creates a Detector. Both windows must be >= 1 and the short window
// strictly smaller than the long one.
func New(shortWindow, longWindow int) (*Detector, error) {
	if shortWindow < 1 || longWindow < 1 {
		return nil, fmt.Errorf("invalid configuration: windows must be >= 1 (short=%d long=%d)", shortWindow, longWindow)
	}
	if shortWindow >= longWindow {
		return nil, fmt.Errorf("invalid configuration: short window %d must be smaller than long window %d", shortWindow, longWindow)
	}
	return &Detector{shortWindow: shortWindow, longWindow: longWindow}, nil
}

// Windows returns the configured short and long window sizes.
func (d *Detector) Windows() (short, long int) {
	return d.shortWindow, d.longWindow
}

// Detect scans the full closing series and returns every crossover event,
// ascending by date. A day counts as "above" only when the short MA is
// strictly greater than the long MA; an exact tie belongs to the not-above
// side. The first day with both MAs defined has no previous state and never
// emits. Returns nil when the series is shorter than the long window.
//
// The input must be sorted ascending by date with no duplicate dates; the
// price store guarantees that.
func (d *Detector) Detect(ticker string, closes []model.ClosePoint) []model.CrossoverSignal {
	if len(closes) < d.longWindow {
		return nil
	}

	prices := extractCloses(closes)
	shortMA := calculator.SMASeries(prices, d.shortWindow)
	longMA := calculator.SMASeries(prices, d.longWindow)

	// Both averages are first defined at longWindow-1.
	first := d.longWindow - 1
	prevAbove := shortMA[first] > longMA[first]

	var signals []model.CrossoverSignal
	for i := first + 1; i < len(prices); i++ {
		above := shortMA[i] > longMA[i]
		if above != prevAbove {
			kind := model.DeadCross
			if above {
				kind = model.GoldenCross
			}
			signals = append(signals, model.CrossoverSignal{
				Ticker:  ticker,
				Date:    closes[i].Date,
				Kind:    kind,
				Close:   prices[i],
				ShortMA: shortMA[i],
				LongMA:  longMA[i],
			})
		}
		prevAbove = above
	}
	return signals
}

// Status evaluates the short/long MA relation on the most recent date only.
// BULLISH iff short MA > long MA; an exact tie is BEARISH, consistent with
// "above" being a strict condition in Detect.
func (d *Detector) Status(ticker string, closes []model.ClosePoint) model.StatusSnapshot {
	if len(closes) < d.longWindow {
		return model.StatusSnapshot{Ticker: ticker, Status: model.StatusInsufficientData}
	}

	prices := extractCloses(closes)
	shortMA, _ := calculator.CalculateSMA(prices, d.shortWindow)
	longMA, _ := calculator.CalculateSMA(prices, d.longWindow)

	last := closes[len(closes)-1]
	status := model.StatusBearish
	if shortMA > longMA {
		status = model.StatusBullish
	}
	return model.StatusSnapshot{
		Ticker:  ticker,
		Date:    last.Date,
		Status:  status,
		Close:   last.Close,
		ShortMA: shortMA,
		LongMA:  longMA,
		Gap:     shortMA - longMA,
	}
}

func extractCloses(closes []model.ClosePoint) []float64 {
	prices := make([]float64, len(closes))
	for i, c := range closes {
		prices[i] = c.Close
	}
	return prices
}
