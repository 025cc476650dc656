package model

// Earnings is a reported earnings event. Either EPS value may be missing.
type Earnings struct {
	EPSActual   *float64
	EPSEstimate *float64
}

// HasEPS reports whether both actual and estimated EPS are present.
func (e Earnings) HasEPS() bool {
	return e.EPSActual != nil && e.EPSEstimate != nil
}

// Beat reports whether actual EPS exceeded the estimate.
func (e Earnings) Beat() bool {
	return e.HasEPS() && *e.EPSActual > *e.EPSEstimate
}

// Split is a stock split with its ratio.
type Split struct {
	Numerator   float64
	Denominator float64
}

// Dividend is a cash distribution per share.
type Dividend struct {
	Amount float64
}

// Events groups external events by kind, keyed by epoch seconds.
type Events struct {
	Earnings  map[int64]Earnings
	Splits    map[int64]Split
	Dividends map[int64]Dividend
}
