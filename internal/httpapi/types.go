package httpapi

import (
	"time"

	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/layout"
	"github.com/jaymes17/catalyst-chart/internal/model"
)

// ChartResponse is the JSON body of GET /api/chart.
type ChartResponse struct {
	Symbol      string          `json:"symbol"`
	Range       model.Range     `json:"range"`
	Points      []PointJSON     `json:"points"`
	Metrics     MetricsJSON     `json:"metrics"`
	Catalysts   []CatalystJSON  `json:"catalysts"` // newest first
	Labels      []PlacementJSON `json:"labels"`    // visible in viewport
	Viewport    ViewportJSON    `json:"viewport"`
	Frame       FrameJSON       `json:"frame"`
	Upcoming    *UpcomingJSON   `json:"upcoming,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type PointJSON struct {
	Date    model.Date `json:"date"`
	Close   float64    `json:"close"`
	MA      float64    `json:"ma"`
	Bullish bool       `json:"bullish"`
}

type MetricsJSON struct {
	CompanyName  string   `json:"company_name"`
	Currency     string   `json:"currency"`
	CurrentPrice float64  `json:"current_price"`
	PeriodReturn float64  `json:"period_return"`
	PeriodLabel  string   `json:"period_label"`
	YTDReturn    *float64 `json:"ytd_return"`
	ATH          float64  `json:"ath"`
	FromATH      float64  `json:"from_ath"`
	High52       float64  `json:"high_52"`
	Low52        float64  `json:"low_52"`
	AvgVolume    float64  `json:"avg_volume"`
	MarketCap    float64  `json:"market_cap,omitempty"`
}

type CatalystJSON struct {
	Index       int        `json:"index"`
	Date        model.Date `json:"date"`
	Close       float64    `json:"close"`
	PctChange   float64    `json:"pct_change"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	Source      string     `json:"source"`
}

type PlacementJSON struct {
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
}

type FrameJSON struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ViewportJSON struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Zoomed bool    `json:"zoomed"`
}

type UpcomingJSON struct {
	Quarter   string     `json:"quarter"`
	Start     model.Date `json:"start"`
	End       model.Date `json:"end"`
	DaysUntil int        `json:"days_until"`
	Countdown string     `json:"countdown"`
}

func newChartResponse(snap *engine.Snapshot, frame layout.Frame, view layout.Viewport) ChartResponse {
	points := make([]PointJSON, len(snap.Series.Points))
	for i, p := range snap.Series.Points {
		points[i] = PointJSON{Date: model.Date{Time: p.Date}, Close: p.Close}
		if i < len(snap.MA) {
			points[i].MA = snap.MA[i]
		}
		if i < len(snap.Bullish) {
			points[i].Bullish = snap.Bullish[i]
		}
	}

	timeline := snap.Timeline()
	catalysts := make([]CatalystJSON, len(timeline))
	for i, c := range timeline {
		catalysts[i] = CatalystJSON{
			Index:       c.Index,
			Date:        model.Date{Time: c.Date},
			Close:       c.Close,
			PctChange:   c.PctChange,
			Title:       c.Title,
			Description: c.Description,
			Link:        c.Link,
			Source:      string(c.Source),
		}
	}

	placements := snap.Layout(frame, view)
	labels := make([]PlacementJSON, len(placements))
	for i, p := range placements {
		labels[i] = PlacementJSON{
			Index: p.Catalyst.Index, X: p.X, Y: p.Y, Width: p.Width, Height: p.Height,
			AnchorX: p.AnchorX, AnchorY: p.AnchorY,
		}
	}

	m := snap.Metrics
	resp := ChartResponse{
		Symbol: snap.Symbol,
		Range:  snap.Range,
		Points: points,
		Metrics: MetricsJSON{
			CompanyName: m.CompanyName, Currency: m.Currency, CurrentPrice: m.CurrentPrice,
			PeriodReturn: m.PeriodReturn, PeriodLabel: m.PeriodLabel, YTDReturn: m.YTDReturn,
			ATH: m.ATH, FromATH: m.FromATH, High52: m.High52, Low52: m.Low52,
			AvgVolume: m.AvgVolume, MarketCap: m.MarketCap,
		},
		Catalysts:   catalysts,
		Labels:      labels,
		Viewport:    ViewportJSON{Min: view.Min, Max: view.Max, Zoomed: view.Zoomed(len(points))},
		Frame:       FrameJSON{Width: frame.Width, Height: frame.Height},
		GeneratedAt: snap.GeneratedAt,
	}
	if u := snap.Upcoming; u.Visible {
		resp.Upcoming = &UpcomingJSON{Quarter: u.Quarter, Start: u.Start, End: u.End, DaysUntil: u.DaysUntil, Countdown: u.Countdown}
	}
	return resp
}
