// Package catalyst detects outsized price moves in a series and labels them
// with the most plausible explanation.
package catalyst

import (
	"math"
	"sort"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

const (
	// MaxCatalysts bounds how many catalysts a chart can carry.
	MaxCatalysts = 5
	// MinPoints is the shortest series that is scanned at all.
	MinPoints = 10
	// MoveThreshold is the minimum absolute combined move, in percent.
	MoveThreshold = 2.0
)

// MinSpacing returns the minimum index distance between two catalysts.
func MinSpacing(n int) int {
	return max(4, n/25)
}

// CombinedMove returns the two-session percent change around point i:
// from the close before i to the close after i. The first point has no move;
// the last point uses its own close as the "after" value.
func CombinedMove(points []model.PricePoint, i int) float64 {
	if i <= 0 || i >= len(points) {
		return 0
	}
	prev := points[i-1].Close
	next := points[i].Close
	if i < len(points)-1 {
		next = points[i+1].Close
	}
	if prev == 0 {
		return 0
	}
	return (next - prev) / prev * 100
}

type move struct {
	index int
	pct   float64
}

// Detect selects up to MaxCatalysts significant moves, spaced at least
// MinSpacing sessions apart, in chronological order.
func Detect(points []model.PricePoint) []model.Catalyst {
	if len(points) < MinPoints {
		return nil
	}

	// Step a: combined two-session moves above the threshold
	moves := make([]move, 0, len(points))
	for i := range points {
		pct := CombinedMove(points, i)
		if math.Abs(pct) > MoveThreshold {
			moves = append(moves, move{index: i, pct: pct})
		}
	}

	// Step b: largest magnitude first, ties keep series order
	sort.SliceStable(moves, func(i, j int) bool {
		return math.Abs(moves[i].pct) > math.Abs(moves[j].pct)
	})

	// Step c: greedy selection honoring spacing
	spacing := MinSpacing(len(points))
	selected := make([]move, 0, MaxCatalysts)
	for _, m := range moves {
		if len(selected) >= MaxCatalysts {
			break
		}
		if collides(selected, m.index, spacing) {
			continue
		}
		selected = append(selected, m)
	}

	// Step d: back to timeline order
	sort.Slice(selected, func(i, j int) bool { return selected[i].index < selected[j].index })

	catalysts := make([]model.Catalyst, len(selected))
	for i, m := range selected {
		p := points[m.index]
		catalysts[i] = model.Catalyst{
			Index:     m.index,
			Date:      p.Date,
			Close:     p.Close,
			PctChange: m.pct,
		}
	}
	return catalysts
}

func collides(selected []move, index, spacing int) bool {
	for _, s := range selected {
		d := s.index - index
		if d < 0 {
			d = -d
		}
		if d < spacing {
			return true
		}
	}
	return false
}
