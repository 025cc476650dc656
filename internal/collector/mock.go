package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Series map[string]*model.Series // keyed by upper-case symbol
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, symbol string, _ model.Range) (*model.Series, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if s, ok := m.Series[strings.ToUpper(symbol)]; ok {
		return s, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoData, symbol)
	}
	return &model.Series{
		Symbol:    strings.ToUpper(symbol),
		Points:    GenerateMockPoints(m.Price, 120, time.Now()),
		Meta:      model.Meta{Symbol: strings.ToUpper(symbol), Currency: "USD"},
		FetchedAt: time.Now(),
	}, nil
}

// GenerateMockPoints builds count daily points ending at end with a gentle uptrend.
func GenerateMockPoints(basePrice float64, count int, end time.Time) []model.PricePoint {
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		d := end.AddDate(0, 0, -(count - i))
		points[i] = model.PricePoint{
			Date:      d,
			Timestamp: d.Unix(),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return points
}
