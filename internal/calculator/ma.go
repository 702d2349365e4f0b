package calculator

import (
	"errors"
	"math"
)

// CalculateSMA computes the simple moving average of the trailing `period`
// prices, inclusive of the most recent one.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries computes the trailing simple moving average at every index.
// result[i] is the mean of prices[i-period+1..i]; indexes with fewer than
// `period` prior values are NaN.
func SMASeries(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
