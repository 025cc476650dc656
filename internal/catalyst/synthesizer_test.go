package catalyst

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

func catalystAt(points []model.PricePoint, idx int, pct float64) model.Catalyst {
	return model.Catalyst{Index: idx, Date: points[idx].Date, Close: points[idx].Close, PctChange: pct}
}

func TestEnrich_EarningsBeatAndMiss(t *testing.T) {
	points := seriesFromCloses(flat(30, 100))
	c := catalystAt(points, 10, 6)
	ts := c.Date.AddDate(0, 0, 2).Unix()

	titleRe := regexp.MustCompile(`^Q[1-4] FY\d{4} Earnings (Beat|Miss)$`)
	tests := []struct {
		name     string
		earnings model.Earnings
		outcome  string
		desc     string
	}{
		{"beat", model.Earnings{EPSActual: f64(1.25), EPSEstimate: f64(1.1)}, "Beat", "EPS: $1.25 vs $1.10 est."},
		{"miss", model.Earnings{EPSActual: f64(1.0), EPSEstimate: f64(1.1)}, "Miss", "EPS: $1.00 vs $1.10 est."},
		{"in line", model.Earnings{EPSActual: f64(1.1), EPSEstimate: f64(1.1)}, "Miss", "EPS: $1.10 vs $1.10 est."},
		{"missing estimate", model.Earnings{EPSActual: f64(1.0)}, "Miss", ""},
	}
	for _, tt := range tests {
		s := &Synthesizer{Ticker: "ACME", Tolerance: 5}
		events := model.Events{Earnings: map[int64]model.Earnings{ts: tt.earnings}}
		got := s.Enrich(context.Background(), []model.Catalyst{c}, events, points)[0]

		if !titleRe.MatchString(got.Title) || !strings.HasSuffix(got.Title, tt.outcome) {
			t.Errorf("%s: unexpected title %q", tt.name, got.Title)
		}
		if !strings.HasPrefix(got.Title, "Q1 FY2024") {
			t.Errorf("%s: expected Q1 FY2024 quarter, got %q", tt.name, got.Title)
		}
		if got.Description != tt.desc {
			t.Errorf("%s: expected description %q, got %q", tt.name, tt.desc, got.Description)
		}
		if !strings.Contains(got.Link, "ACME+earnings+Q1+FY2024") {
			t.Errorf("%s: unexpected link %q", tt.name, got.Link)
		}
		if got.Source != model.SourceEarnings {
			t.Errorf("%s: expected earnings source, got %s", tt.name, got.Source)
		}
	}
}

func TestEnrich_SplitAndDividend(t *testing.T) {
	points := seriesFromCloses(flat(30, 100))
	up := catalystAt(points, 5, 3)
	down := catalystAt(points, 20, -3)
	events := model.Events{
		Splits:    map[int64]model.Split{up.Date.Unix(): {Numerator: 4, Denominator: 1}},
		Dividends: map[int64]model.Dividend{down.Date.Unix(): {Amount: 0.245}},
	}
	s := &Synthesizer{Ticker: "ACME", Tolerance: 5}
	got := s.Enrich(context.Background(), []model.Catalyst{up, down}, events, points)

	if got[0].Title != "4:1 Stock Split" || got[0].Description != "Jan 7, 2024" {
		t.Errorf("unexpected split label %+v", got[0])
	}
	if got[1].Title != "Dividend: $0.24/share" && got[1].Title != "Dividend: $0.25/share" {
		t.Errorf("unexpected dividend title %q", got[1].Title)
	}
	if got[1].Description != "Ex-dividend adjustment" {
		t.Errorf("unexpected dividend description %q", got[1].Description)
	}
}

func TestEnrich_NewsHeadline(t *testing.T) {
	points := seriesFromCloses(flat(30, 100))
	c := catalystAt(points, 12, 4)
	var gotTicker string
	s := &Synthesizer{
		Ticker:    "ACME",
		Tolerance: 5,
		Headline: func(_ context.Context, ticker string, _ time.Time) (string, error) {
			gotTicker = ticker
			return "Acme soars on contract win", nil
		},
	}
	got := s.Enrich(context.Background(), []model.Catalyst{c}, model.Events{}, points)[0]

	if gotTicker != "ACME" {
		t.Errorf("expected ticker passed to lookup, got %q", gotTicker)
	}
	if got.Title != "Acme soars on contract win" || got.Source != model.SourceNews {
		t.Errorf("unexpected news label %+v", got)
	}
	if got.Description != FormatDateShort(c.Date) {
		t.Errorf("unexpected description %q", got.Description)
	}
}

func TestEnrich_NewsFailuresFallBack(t *testing.T) {
	closes := flat(40, 100)
	closes[30] = 150 // series max
	closes[5] = 60   // series min
	points := seriesFromCloses(closes)

	cats := []model.Catalyst{
		catalystAt(points, 5, -10),
		catalystAt(points, 15, 20),
		catalystAt(points, 30, 12),
	}

	var calls atomic.Int32
	s := &Synthesizer{
		Ticker:      "ACME",
		Tolerance:   5,
		NewsTimeout: 50 * time.Millisecond,
		Headline: func(ctx context.Context, _ string, date time.Time) (string, error) {
			calls.Add(1)
			switch date.Day() {
			case points[5].Date.Day():
				return "", errors.New("feed down")
			case points[15].Date.Day():
				<-ctx.Done() // hangs until its own timeout
				return "", ctx.Err()
			default:
				panic("parser blew up")
			}
		},
	}

	start := time.Now()
	got := s.Enrich(context.Background(), cats, model.Events{}, points)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("lookups were not bounded by their timeout: %v", elapsed)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 lookups, got %d", calls.Load())
	}

	want := []string{"Multi-Year Low", "Major Rally", "All-Time High Breakout"}
	for i, c := range got {
		if c.Title != want[i] {
			t.Errorf("catalyst %d: expected %q, got %q", i, want[i], c.Title)
		}
		if c.Source != model.SourceHeuristic || c.Description == "" || c.Link == "" {
			t.Errorf("catalyst %d: incomplete fallback label %+v", i, c)
		}
	}
}

// Each lookup blocks until every lookup has started, so the batch only
// resolves from news when the lookups run at the same time.
func TestEnrich_NewsLookupsOverlap(t *testing.T) {
	points := seriesFromCloses(flat(40, 100))
	cats := []model.Catalyst{
		catalystAt(points, 5, 6),
		catalystAt(points, 15, -7),
		catalystAt(points, 30, 8),
	}

	var started atomic.Int32
	allStarted := make(chan struct{})
	s := &Synthesizer{
		Ticker:      "ACME",
		Tolerance:   5,
		NewsTimeout: 2 * time.Second,
		Headline: func(ctx context.Context, _ string, date time.Time) (string, error) {
			if started.Add(1) == int32(len(cats)) {
				close(allStarted)
			}
			select {
			case <-allStarted:
				return "Acme news " + date.Format("Jan 2"), nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}

	got := s.Enrich(context.Background(), cats, model.Events{}, points)
	for i, c := range got {
		want := "Acme news " + cats[i].Date.Format("Jan 2")
		if c.Source != model.SourceNews || c.Title != want {
			t.Errorf("catalyst %d: expected news title %q, got %q (%s)", i, want, c.Title, c.Source)
		}
	}
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	points := seriesFromCloses(flat(30, 100))
	in := []model.Catalyst{catalystAt(points, 10, 5)}
	s := &Synthesizer{Ticker: "ACME"}
	out := s.Enrich(context.Background(), in, model.Events{}, points)
	if in[0].Title != "" {
		t.Error("input catalyst was mutated")
	}
	if out[0].Title == "" {
		t.Error("output catalyst not labelled")
	}
}

func TestSmartLabel_Tiers(t *testing.T) {
	date := time.Date(2023, 8, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		close float64
		pct   float64
		title string
		desc  string
	}{
		{"ath", 200, 5, "All-Time High Breakout", "$200.00"},
		{"ath needs upward move", 200, -5, "Notable Decline", "Aug 14, 2023"},
		{"low", 51, -5, "Multi-Year Low", "$51.00"},
		{"major rally", 120, 16, "Major Rally", "+16.00% move"},
		{"sell-off", 120, -16, "Sharp Sell-Off", "-16.00% move"},
		{"breakout", 120, 9, "Strong Breakout", "+9.00% move"},
		{"drop", 120, -9, "Significant Drop", "-9.00% move"},
		{"notable rally", 120, 3, "Notable Rally", "Aug 14, 2023"},
	}
	for _, tt := range tests {
		c := model.Catalyst{Date: date, Close: tt.close, PctChange: tt.pct}
		l := SmartLabel(c, 50, 200, "ACME")
		if l.Title != tt.title || l.Description != tt.desc {
			t.Errorf("%s: got (%q, %q), want (%q, %q)", tt.name, l.Title, l.Description, tt.title, tt.desc)
		}
		if !strings.Contains(l.Link, "ACME+stock+news") {
			t.Errorf("%s: unexpected link %q", tt.name, l.Link)
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatPrice(1234.5); got != "$1,234.50" {
		t.Errorf("FormatPrice(1234.5) = %q", got)
	}
	if got := FormatPrice(12.345); got != "$12.35" && got != "$12.34" {
		t.Errorf("FormatPrice(12.345) = %q", got)
	}
	if got := FormatPrice(0.12345); got != "$0.1235" && got != "$0.1234" {
		t.Errorf("FormatPrice(0.12345) = %q", got)
	}
	if got := FormatPercent(0); got != "+0.00%" {
		t.Errorf("FormatPercent(0) = %q", got)
	}
	if got := FiscalQuarterLabel(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)); got != "Q3 FY2024" {
		t.Errorf("FiscalQuarterLabel = %q", got)
	}
	if got := FormatVolume(12_345_678); got != "12.35M" {
		t.Errorf("FormatVolume = %q", got)
	}
}
