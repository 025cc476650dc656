package engine

import (
	"sort"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/layout"
	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Snapshot is the result of one generation. It is never mutated after
// Generate returns; Layout and Timeline return fresh slices.
type Snapshot struct {
	Symbol      string
	Range       model.Range
	Series      *model.Series
	MA          []float64
	Bullish     []bool
	Metrics     model.Metrics
	Catalysts   []model.Catalyst // chronological
	Upcoming    model.EarningsWindow
	GeneratedAt time.Time
}

// Layout places labels for every catalyst in frame with the scales of view,
// then keeps only the labels visible in view.
func (s *Snapshot) Layout(frame layout.Frame, view layout.Viewport) []model.LabelPlacement {
	area := frame.Area()
	xs, ys := layout.Scales(s.Series.Closes(), view, area)
	return view.Filter(layout.Place(s.Catalysts, xs, ys, area))
}

// FullView is the viewport covering the whole series.
func (s *Snapshot) FullView() layout.Viewport {
	return layout.FullView(len(s.Series.Points))
}

// Timeline returns the catalysts newest first.
func (s *Snapshot) Timeline() []model.Catalyst {
	out := make([]model.Catalyst, len(s.Catalysts))
	copy(out, s.Catalysts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
