package model

import "time"

// LabelSource indicates which enrichment tier produced a catalyst label.
type LabelSource string

const (
	SourceEarnings  LabelSource = "earnings"
	SourceSplit     LabelSource = "split"
	SourceDividend  LabelSource = "dividend"
	SourceNews      LabelSource = "news"
	SourceHeuristic LabelSource = "heuristic"
)

// Catalyst is a detected significant price move.
type Catalyst struct {
	Index       int
	Date        time.Time
	Close       float64
	PctChange   float64 // combined two-session move, signed percent
	Title       string
	Description string
	Link        string
	Source      LabelSource
}

// Positive reports whether the move was upward (zero counts as positive).
func (c Catalyst) Positive() bool { return c.PctChange >= 0 }

// LabelPlacement is a positioned label rectangle in pixel space.
type LabelPlacement struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Bottom   float64
	Catalyst Catalyst
	AnchorX  float64
	AnchorY  float64
}
