// Package layout positions catalyst labels in chart pixel space.
package layout

import "github.com/jaymes17/catalyst-chart/internal/model"

// Label box geometry, in pixels.
const (
	LabelWidth  = 240.0
	LabelHeight = 46.0
	VGap        = 6.0
	HGap        = 8.0
	// Margin is the gap between the plot top and the first tier.
	Margin = 6.0
	// AnchorClearance is the minimum gap between a label's bottom and its data point.
	AnchorClearance = 15.0
	// Tiers is the number of vertical rows tried per label.
	Tiers = 6
)

// TierY returns the top edge of tier k.
func TierY(area Rect, k int) float64 {
	return area.Top + Margin + float64(k)*(LabelHeight+VGap)
}

// Place positions one label per catalyst. Catalysts are placed in input order,
// so earlier ones get first pick of the tiers. A label that fits no tier is
// forced onto the top tier rather than dropped.
func Place(catalysts []model.Catalyst, xs, ys Scale, area Rect) []model.LabelPlacement {
	placed := make([]model.LabelPlacement, 0, len(catalysts))

	for _, c := range catalysts {
		dataX := xs.Pixel(float64(c.Index))
		dataY := ys.Pixel(c.Close)

		labelX := dataX - LabelWidth/2
		labelX = max(area.Left, min(labelX, area.Right-LabelWidth))

		labelY := TierY(area, 0)
		for k := 0; k < Tiers; k++ {
			tryY := TierY(area, k)
			if tryY+LabelHeight >= dataY-AnchorClearance {
				continue
			}
			if collides(placed, labelX, tryY) {
				continue
			}
			labelY = tryY
			break
		}

		placed = append(placed, model.LabelPlacement{
			X:        labelX,
			Y:        labelY,
			Width:    LabelWidth,
			Height:   LabelHeight,
			Bottom:   labelY + LabelHeight,
			Catalyst: c,
			AnchorX:  dataX,
			AnchorY:  dataY,
		})
	}
	return placed
}

// collides reports whether a label at (x, y) overlaps any placed label,
// counting HGap as horizontal buffer. Tier spacing already provides VGap.
func collides(placed []model.LabelPlacement, x, y float64) bool {
	for _, p := range placed {
		apart := x+LabelWidth+HGap < p.X ||
			x > p.X+p.Width+HGap ||
			y+LabelHeight < p.Y ||
			y > p.Y+p.Height
		if !apart {
			return true
		}
	}
	return false
}

// Overlaps reports whether two placements share any interior area.
func Overlaps(a, b model.LabelPlacement) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}
