package layout

import "github.com/jaymes17/catalyst-chart/internal/model"

// Viewport is the visible data-index window of a zoomed or panned chart.
type Viewport struct {
	Min float64
	Max float64
}

// FullView returns the viewport covering a series of n points.
func FullView(n int) Viewport {
	return Viewport{Min: 0, Max: float64(max(n-1, 0))}
}

// Contains reports whether index is visible, allowing one index of slack on
// each side.
func (v Viewport) Contains(index int) bool {
	i := float64(index)
	return i >= v.Min-1 && i <= v.Max+1
}

// Zoomed reports whether v shows less than a series of n points.
func (v Viewport) Zoomed(n int) bool {
	return v.Min > 0.5 || v.Max < float64(n)-1.5
}

// Filter returns the placements whose catalyst is visible. Layout itself is
// always computed over the full series; this only hides labels.
func (v Viewport) Filter(placements []model.LabelPlacement) []model.LabelPlacement {
	visible := make([]model.LabelPlacement, 0, len(placements))
	for _, p := range placements {
		if v.Contains(p.Catalyst.Index) {
			visible = append(visible, p)
		}
	}
	return visible
}
