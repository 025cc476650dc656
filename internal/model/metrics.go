package model

// Metrics holds summary statistics for a fetched series.
type Metrics struct {
	CompanyName  string
	Currency     string
	CurrentPrice float64
	PeriodReturn float64 // percent over the whole series
	PeriodLabel  string
	YTDReturn    *float64 // nil when the series has no point in the current year
	ATH          float64
	FromATH      float64 // percent
	High52       float64 // over the last 52 points
	Low52        float64
	AvgVolume    float64
	MarketCap    float64
}

// EarningsWindow is the estimated next earnings reporting window.
type EarningsWindow struct {
	Quarter   string
	Start     Date
	End       Date
	DaysUntil int
	Countdown string
	Visible   bool
}
