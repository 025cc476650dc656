package model

import (
	"fmt"
	"strings"
)

// Range is a selectable chart history range.
type Range string

const (
	Range1Y  Range = "1Y"
	Range2Y  Range = "2Y"
	Range5Y  Range = "5Y"
	RangeMax Range = "MAX"
)

// ParseRange parses a range label case-insensitively.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToUpper(strings.TrimSpace(s))); r {
	case Range1Y, Range2Y, Range5Y, RangeMax:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q (want 1Y, 2Y, 5Y or MAX)", s)
	}
}

// daily reports whether the range is sampled per trading day.
func (r Range) daily() bool { return r == Range1Y || r == Range2Y }

// YahooRange returns the Yahoo chart API range parameter.
func (r Range) YahooRange() string {
	switch r {
	case Range1Y:
		return "1y"
	case Range2Y:
		return "2y"
	case RangeMax:
		return "max"
	default:
		return "5y"
	}
}

// Interval returns the sampling interval: daily for 1Y/2Y, weekly otherwise.
func (r Range) Interval() string {
	if r.daily() {
		return "1d"
	}
	return "1wk"
}

// Tolerance returns the event matching window in days.
// Weekly-sampled ranges get a wider window.
func (r Range) Tolerance() float64 {
	if r.daily() {
		return 5
	}
	return 10
}

// Label returns the display label used for period returns.
func (r Range) Label() string {
	if r == RangeMax {
		return "All-Time"
	}
	if r == "" {
		return string(Range5Y)
	}
	return string(r)
}
