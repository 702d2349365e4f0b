package detector

import (
	"math"
	"testing"
	"time"

	"CrossWatch/internal/model"
)

func series(prices []float64) []model.ClosePoint {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	closes := make([]model.ClosePoint, len(prices))
	for i, p := range prices {
		closes[i] = model.ClosePoint{
			Date:  start.AddDate(0, 0, i).Format(model.DateLayout),
			Close: p,
		}
	}
	return closes
}

func mustNew(t *testing.T, short, long int) *Detector {
	t.Helper()
	d, err := New(short, long)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", short, long, err)
	}
	return d
}

func TestNew_RejectsInvalidWindows(t *testing.T) {
	tests := []struct {
		short, long int
	}{
		{0, 30},
		{5, 0},
		{-1, 30},
		{30, 30},
		{30, 5},
	}
	for _, tt := range tests {
		if _, err := New(tt.short, tt.long); err == nil {
			t.Errorf("New(%d, %d): expected error", tt.short, tt.long)
		}
	}
}

func TestDetect_InsufficientHistory(t *testing.T) {
	d := mustNew(t, 5, 30)
	prices := make([]float64, 29)
	for i := range prices {
		prices[i] = 50
	}
	if got := d.Detect("TQQQ", series(prices)); len(got) != 0 {
		t.Errorf("expected no signals for %d closes, got %d", len(prices), len(got))
	}
	if got := d.Detect("TQQQ", nil); len(got) != 0 {
		t.Errorf("expected no signals for empty series, got %d", len(got))
	}
}

// Declining series that rallies hard over the last five days: the short MA
// overtakes the long MA exactly once.
func TestDetect_GoldenCrossOnRally(t *testing.T) {
	d := mustNew(t, 5, 30)

	prices := make([]float64, 0, 40)
	for i := 0; i < 35; i++ {
		prices = append(prices, 80-1.6*float64(i)) // 80 down to 25.6
	}
	prices = append(prices, 40, 55, 70, 85, 100)

	signals := d.Detect("TQQQ", series(prices))
	if len(signals) != 1 {
		t.Fatalf("expected exactly 1 signal, got %d: %+v", len(signals), signals)
	}
	sig := signals[0]
	if sig.Kind != model.GoldenCross {
		t.Errorf("expected GOLDEN_CROSS, got %s", sig.Kind)
	}
	if sig.ShortMA <= sig.LongMA {
		t.Errorf("golden cross must have short MA > long MA, got %.2f <= %.2f", sig.ShortMA, sig.LongMA)
	}
	if sig.Ticker != "TQQQ" {
		t.Errorf("expected ticker TQQQ, got %s", sig.Ticker)
	}
}

// Rally that collapses over the last five days: one dead cross.
func TestDetect_DeadCrossOnCrash(t *testing.T) {
	d := mustNew(t, 5, 30)

	prices := make([]float64, 0, 40)
	for i := 0; i < 35; i++ {
		prices = append(prices, 30+2*float64(i)) // 30 up to 98
	}
	prices = append(prices, 60, 45, 35, 25, 15)

	signals := d.Detect("SOXL", series(prices))
	if len(signals) != 1 {
		t.Fatalf("expected exactly 1 signal, got %d: %+v", len(signals), signals)
	}
	sig := signals[0]
	if sig.Kind != model.DeadCross {
		t.Errorf("expected DEAD_CROSS, got %s", sig.Kind)
	}
	if sig.ShortMA >= sig.LongMA {
		t.Errorf("dead cross must have short MA < long MA here, got %.2f >= %.2f", sig.ShortMA, sig.LongMA)
	}
}

// A flat series keeps both MAs exactly equal; equality is not "above", so
// nothing ever fires.
func TestDetect_FlatSeriesEmitsNothing(t *testing.T) {
	d := mustNew(t, 5, 30)
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 50
	}
	if got := d.Detect("TQQQ", series(prices)); len(got) != 0 {
		t.Errorf("expected no signals for flat series, got %+v", got)
	}
}

// Rising out of an exact MA tie counts as a false->true transition, so a
// golden cross fires on the first strictly-above day. Falling out of the
// tie is not-above -> not-above and must stay silent.
func TestDetect_TieBreaksTowardNotAbove(t *testing.T) {
	d := mustNew(t, 5, 30)

	flat := make([]float64, 34)
	for i := range flat {
		flat[i] = 50
	}

	up := append(append([]float64{}, flat...), 55)
	signals := d.Detect("TQQQ", series(up))
	if len(signals) != 1 || signals[0].Kind != model.GoldenCross {
		t.Fatalf("expected exactly one GOLDEN_CROSS after rise from tie, got %+v", signals)
	}
	if signals[0].Date != series(up)[34].Date {
		t.Errorf("golden cross should fire on the rise day, got %s", signals[0].Date)
	}

	down := append(append([]float64{}, flat...), 45)
	if got := d.Detect("TQQQ", series(down)); len(got) != 0 {
		t.Errorf("drop out of a tie must not fire, got %+v", got)
	}
}

// A long oscillating series produces several crossings whose kinds must
// strictly alternate and whose dates must ascend.
func TestDetect_SignalsAlternateAndAscend(t *testing.T) {
	d := mustNew(t, 5, 30)

	prices := make([]float64, 160)
	for i := range prices {
		prices[i] = 50 + 20*math.Sin(float64(i)/7)
	}

	signals := d.Detect("TQQQ", series(prices))
	if len(signals) < 2 {
		t.Fatalf("expected multiple signals from oscillating series, got %d", len(signals))
	}
	for i := 1; i < len(signals); i++ {
		if signals[i].Kind == signals[i-1].Kind {
			t.Errorf("consecutive signals share kind %s at %s and %s",
				signals[i].Kind, signals[i-1].Date, signals[i].Date)
		}
		if signals[i].Date <= signals[i-1].Date {
			t.Errorf("signal dates must ascend: %s then %s", signals[i-1].Date, signals[i].Date)
		}
	}
}

func TestStatus_InsufficientData(t *testing.T) {
	d := mustNew(t, 5, 30)
	snap := d.Status("TQQQ", series([]float64{50, 51, 52}))
	if snap.Status != model.StatusInsufficientData {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", snap.Status)
	}
	if snap.ShortMA != 0 || snap.LongMA != 0 || snap.Gap != 0 {
		t.Errorf("MA fields must be zero on insufficient data: %+v", snap)
	}
}

func TestStatus_FlatSeriesIsBearish(t *testing.T) {
	d := mustNew(t, 5, 30)
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 50
	}
	snap := d.Status("TQQQ", series(prices))
	if snap.Status != model.StatusBearish {
		t.Errorf("equal MAs must classify BEARISH, got %s", snap.Status)
	}
	if snap.Gap != 0 {
		t.Errorf("expected zero gap, got %f", snap.Gap)
	}
	if snap.Close != 50 {
		t.Errorf("expected close 50, got %f", snap.Close)
	}
}

func TestStatus_BullishAfterRallyWithConsistentGap(t *testing.T) {
	d := mustNew(t, 5, 30)

	prices := make([]float64, 0, 40)
	for i := 0; i < 35; i++ {
		prices = append(prices, 80-1.6*float64(i))
	}
	prices = append(prices, 40, 55, 70, 85, 100)

	snap := d.Status("TQQQ", series(prices))
	if snap.Status != model.StatusBullish {
		t.Fatalf("expected BULLISH, got %s", snap.Status)
	}
	if snap.ShortMA <= snap.LongMA {
		t.Errorf("bullish snapshot needs short MA > long MA: %.2f <= %.2f", snap.ShortMA, snap.LongMA)
	}
	if diff := math.Abs(snap.Gap - (snap.ShortMA - snap.LongMA)); diff >= 0.01 {
		t.Errorf("gap drifted from short-long difference by %f", diff)
	}
	if snap.Close != 100 {
		t.Errorf("snapshot must use the most recent close, got %f", snap.Close)
	}
}
