package model

import "time"

// PricePoint represents a single trading session.
type PricePoint struct {
	Date      time.Time
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Meta holds descriptive fields returned alongside a price history.
type Meta struct {
	Symbol    string
	ShortName string
	LongName  string
	Currency  string
	MarketCap float64
}

// CompanyName returns the best available display name.
func (m Meta) CompanyName() string {
	switch {
	case m.ShortName != "":
		return m.ShortName
	case m.LongName != "":
		return m.LongName
	default:
		return m.Symbol
	}
}

// Series holds a chronological price history with its external events.
type Series struct {
	Symbol    string
	Points    []PricePoint
	Meta      Meta
	Events    Events
	FetchedAt time.Time
}

// Closes returns the close of every point.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}
