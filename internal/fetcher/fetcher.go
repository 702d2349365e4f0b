package fetcher

import (
	"time"

	"CrossWatch/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	// FetchDaily returns up to `days` of the most recent daily bars for a
	// ticker, ascending by date.
	FetchDaily(ticker string, days int) ([]model.OHLCV, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
// Bars, when set, takes priority; otherwise a synthetic series around Price
// is generated. Series maps per-ticker bar sets for multi-ticker tests.
type MockFetcher struct {
	Price  float64
	Bars   []model.OHLCV
	Series map[string][]model.OHLCV
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(ticker string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Series[ticker]; ok {
		return bars, nil
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Date:     time.Now().AddDate(0, 0, -(count - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return bars
}
