package calculator

import (
	"errors"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// TrendPeriod is the moving average used to color sessions bullish or bearish.
const TrendPeriod = 10

// CalculateSMA computes the simple moving average of the last period prices.
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

// MovingAverage returns the trailing SMA at every point. Points before the
// first full window carry their own close.
func MovingAverage(points []model.PricePoint, period int) []float64 {
	closes := extractCloses(points)
	ma := make([]float64, len(closes))
	for i := range closes {
		v, err := CalculateSMA(closes[:i+1], period)
		if err != nil {
			v = closes[i]
		}
		ma[i] = v
	}
	return ma
}

// Bullish reports, per point, whether the close is at or above its moving average.
func Bullish(points []model.PricePoint, ma []float64) []bool {
	out := make([]bool, len(points))
	for i, p := range points {
		out[i] = i >= len(ma) || p.Close >= ma[i]
	}
	return out
}

func extractCloses(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
