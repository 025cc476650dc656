package layout

import (
	"math"
	"testing"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// pixelScale maps index or value straight to pixels via a lookup.
type pixelScale map[float64]float64

func (p pixelScale) Pixel(v float64) float64 { return p[v] }

var testArea = Rect{Left: 0, Top: 0, Right: 1200, Bottom: 600}

func assertNoOverlap(t *testing.T, placements []model.LabelPlacement) {
	t.Helper()
	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			if Overlaps(placements[i], placements[j]) {
				t.Errorf("labels %d and %d overlap: %+v vs %+v", i, j, placements[i], placements[j])
			}
		}
	}
}

func TestPlace_CloseAnchorsDoNotOverlap(t *testing.T) {
	cats := []model.Catalyst{
		{Index: 1, Close: 10},
		{Index: 2, Close: 20},
	}
	xs := pixelScale{1: 500, 2: 505}
	ys := pixelScale{10: 400, 20: 400}

	got := Place(cats, xs, ys, testArea)
	if len(got) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(got))
	}
	assertNoOverlap(t, got)
	if got[0].Y != TierY(testArea, 0) {
		t.Errorf("first label should take the top tier, got y=%.1f", got[0].Y)
	}
	if got[1].Y != TierY(testArea, 1) {
		t.Errorf("second label should drop to tier 1, got y=%.1f", got[1].Y)
	}
	for _, p := range got {
		if p.Bottom >= p.AnchorY-AnchorClearance {
			t.Errorf("label bottom %.1f does not clear anchor %.1f", p.Bottom, p.AnchorY)
		}
	}
}

func TestPlace_NeverDropsLabels(t *testing.T) {
	var cats []model.Catalyst
	xs, ys := pixelScale{}, pixelScale{}
	for i := 0; i < Tiers+3; i++ {
		cats = append(cats, model.Catalyst{Index: i, Close: 100})
		xs[float64(i)] = 600
	}
	ys[100] = 590

	got := Place(cats, xs, ys, testArea)
	if len(got) != len(cats) {
		t.Fatalf("expected %d placements, got %d", len(cats), len(got))
	}
	for i := 0; i < Tiers; i++ {
		if got[i].Y != TierY(testArea, i) {
			t.Errorf("label %d: expected tier %d, got y=%.1f", i, i, got[i].Y)
		}
	}
	for i := Tiers; i < len(got); i++ {
		if got[i].Y != TierY(testArea, 0) {
			t.Errorf("overflow label %d should be forced to the top tier, got y=%.1f", i, got[i].Y)
		}
	}
}

func TestPlace_AnchorTooHighForcesTopTier(t *testing.T) {
	cats := []model.Catalyst{{Index: 0, Close: 1}}
	got := Place(cats, pixelScale{0: 300}, pixelScale{1: 20}, testArea)
	if got[0].Y != TierY(testArea, 0) {
		t.Errorf("expected forced top tier, got y=%.1f", got[0].Y)
	}
}

func TestPlace_ClampsHorizontally(t *testing.T) {
	cats := []model.Catalyst{{Index: 0, Close: 1}, {Index: 1, Close: 1}}
	xs := pixelScale{0: 10, 1: 1195}
	ys := pixelScale{1: 500}
	got := Place(cats, xs, ys, testArea)

	if got[0].X != testArea.Left {
		t.Errorf("left label should clamp to %.0f, got %.1f", testArea.Left, got[0].X)
	}
	if got[1].X != testArea.Right-LabelWidth {
		t.Errorf("right label should clamp to %.0f, got %.1f", testArea.Right-LabelWidth, got[1].X)
	}
	if got[1].AnchorX != 1195 {
		t.Errorf("anchor should keep the data pixel, got %.1f", got[1].AnchorX)
	}
}

func TestPlace_FarApartShareTier(t *testing.T) {
	cats := []model.Catalyst{{Index: 0, Close: 1}, {Index: 1, Close: 1}}
	xs := pixelScale{0: 150, 1: 900}
	ys := pixelScale{1: 500}
	got := Place(cats, xs, ys, testArea)
	if got[0].Y != got[1].Y {
		t.Errorf("separated labels should share a tier, got %.1f and %.1f", got[0].Y, got[1].Y)
	}
}

func TestLinearScale(t *testing.T) {
	s := LinearScale{D0: 0, D1: 100, R0: 600, R1: 100}
	if got := s.Pixel(0); got != 600 {
		t.Errorf("Pixel(0) = %.1f", got)
	}
	if got := s.Pixel(50); got != 350 {
		t.Errorf("Pixel(50) = %.1f", got)
	}
	flat := LinearScale{D0: 5, D1: 5, R0: 0, R1: 10}
	if got := flat.Pixel(5); got != 5 {
		t.Errorf("degenerate domain should map to midpoint, got %.1f", got)
	}
}

func TestScales_FitVisibleWindow(t *testing.T) {
	closes := []float64{10, 20, 30, 40, 50}
	area := Frame{Width: 1000, Height: 700}.Area()

	xs, ys := Scales(closes, Viewport{Min: 1, Max: 3}, area)
	if xs.Pixel(1) != area.Left || xs.Pixel(3) != area.Right {
		t.Errorf("x scale should span the area over the view, got %.1f..%.1f", xs.Pixel(1), xs.Pixel(3))
	}
	// Visible closes are 20..40, range 20 → domain 19..41.6.
	if math.Abs(ys.D0-19) > 1e-9 || math.Abs(ys.D1-41.6) > 1e-9 {
		t.Errorf("unexpected value domain %.2f..%.2f", ys.D0, ys.D1)
	}
	if ys.Pixel(ys.D1) != area.Top {
		t.Errorf("domain top should map to area top")
	}
}
