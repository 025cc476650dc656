package layout

import "math"

// Rect is an axis-aligned rectangle in pixel space.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Scale maps a data value to a pixel coordinate.
type Scale interface {
	Pixel(v float64) float64
}

// LinearScale maps the domain [D0, D1] onto the pixel range [R0, R1].
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func (s LinearScale) Pixel(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Chart padding around the plot area.
const (
	PadTop    = 180.0
	PadRight  = 10.0
	PadBottom = 5.0
	PadLeft   = 5.0
)

// Frame is the pixel size of a rendered chart.
type Frame struct {
	Width  float64
	Height float64
}

// Area returns the plot rectangle inside the frame's padding.
func (f Frame) Area() Rect {
	return Rect{
		Left:   PadLeft,
		Top:    PadTop,
		Right:  math.Max(PadLeft, f.Width-PadRight),
		Bottom: math.Max(PadTop, f.Height-PadBottom),
	}
}

// ValueDomain returns the y-axis domain for closes: 5% headroom below the
// lowest close and 8% above the highest. A flat series gets a unit range.
func ValueDomain(closes []float64) (lo, hi float64) {
	if len(closes) == 0 {
		return 0, 1
	}
	minP, maxP := math.Inf(1), math.Inf(-1)
	for _, c := range closes {
		minP = math.Min(minP, c)
		maxP = math.Max(maxP, c)
	}
	rng := maxP - minP
	if rng == 0 {
		rng = 1
	}
	return minP - rng*0.05, maxP + rng*0.08
}

// Scales builds the index and value scales for a chart showing closes over
// view inside area. The value domain is fitted to the visible closes.
func Scales(closes []float64, view Viewport, area Rect) (xs, ys LinearScale) {
	xs = LinearScale{D0: view.Min, D1: view.Max, R0: area.Left, R1: area.Right}

	lo := max(0, int(math.Floor(view.Min)))
	hi := min(len(closes)-1, int(math.Ceil(view.Max)))
	visible := closes
	if lo <= hi {
		visible = closes[lo : hi+1]
	}
	d0, d1 := ValueDomain(visible)
	ys = LinearScale{D0: d0, D1: d1, R0: area.Bottom, R1: area.Top}
	return xs, ys
}
