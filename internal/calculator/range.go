package calculator

import (
	"errors"
	"math"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Calculate52WeekRange scans the most recent 52 points and returns the highest
// high and lowest low. Weekly series cover a year; daily ones cover ~10 weeks.
func Calculate52WeekRange(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no points provided")
	}
	start := max(len(points)-52, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points[start:] {
		if p.High > 0 && p.High > high {
			high = p.High
		}
		if p.Low > 0 && p.Low < low {
			low = p.Low
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, errors.New("no valid high/low in range")
	}
	return high, low, nil
}

// CalculateATH returns the highest high across the series.
func CalculateATH(points []model.PricePoint) (float64, error) {
	ath := math.Inf(-1)
	for _, p := range points {
		if p.High > 0 && p.High > ath {
			ath = p.High
		}
	}
	if math.IsInf(ath, -1) {
		return 0, errors.New("no valid highs")
	}
	return ath, nil
}

// CalculateMetrics summarizes a series as of now.
func CalculateMetrics(s *model.Series, rng model.Range, now time.Time) (model.Metrics, error) {
	if len(s.Points) == 0 {
		return model.Metrics{}, errors.New("no points provided")
	}
	first := s.Points[0].Close
	current := s.Points[len(s.Points)-1].Close

	m := model.Metrics{
		CompanyName:  s.Meta.CompanyName(),
		Currency:     s.Meta.Currency,
		CurrentPrice: current,
		PeriodReturn: pctChange(first, current),
		PeriodLabel:  rng.Label(),
		MarketCap:    s.Meta.MarketCap,
	}
	if m.CompanyName == "" {
		m.CompanyName = s.Symbol
	}
	if m.Currency == "" {
		m.Currency = "USD"
	}

	for _, p := range s.Points {
		if p.Date.Year() == now.Year() {
			ytd := pctChange(p.Close, current)
			m.YTDReturn = &ytd
			break
		}
	}

	if ath, err := CalculateATH(s.Points); err == nil {
		m.ATH = ath
		m.FromATH = pctChange(ath, current)
	} else {
		m.ATH = current
	}

	if h, l, err := Calculate52WeekRange(s.Points); err == nil {
		m.High52, m.Low52 = h, l
	} else {
		m.High52, m.Low52 = current, current
	}

	var sum float64
	var n int
	for _, p := range s.Points {
		if p.Volume > 0 {
			sum += p.Volume
			n++
		}
	}
	if n > 0 {
		m.AvgVolume = sum / float64(n)
	}
	return m, nil
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
