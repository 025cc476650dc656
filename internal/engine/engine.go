// Package engine runs the catalyst chart pipeline: fetch, detect, enrich and
// summarize a symbol's price history into an immutable Snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/calculator"
	"github.com/jaymes17/catalyst-chart/internal/catalyst"
	"github.com/jaymes17/catalyst-chart/internal/collector"
	"github.com/jaymes17/catalyst-chart/internal/model"
)

// MinPoints is the smallest series the pipeline will chart.
const MinPoints = 5

var (
	ErrEmptySymbol      = errors.New("symbol is required")
	ErrInsufficientData = errors.New("not enough data points")
)

// HeadlineSource finds a news headline for a company around a date.
type HeadlineSource interface {
	Headline(ctx context.Context, ticker, company string, date time.Time) (string, error)
}

// Request selects what to chart.
type Request struct {
	Symbol string
	Range  model.Range
}

// Engine generates snapshots. News is optional.
type Engine struct {
	Fetcher     collector.Fetcher
	News        HeadlineSource
	NewsTimeout time.Duration
	Now         func() time.Time
}

// New creates an engine. news may be nil to disable headline lookups.
func New(fetcher collector.Fetcher, news HeadlineSource, newsTimeout time.Duration) *Engine {
	return &Engine{
		Fetcher:     fetcher,
		News:        news,
		NewsTimeout: newsTimeout,
		Now:         time.Now,
	}
}

// Generate fetches req.Symbol and builds its snapshot.
func (e *Engine) Generate(ctx context.Context, req Request) (*Snapshot, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	rng := req.Range
	if rng == "" {
		rng = model.Range5Y
	}

	series, err := e.Fetcher.FetchSeries(ctx, symbol, rng)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(series.Points) < MinPoints {
		return nil, fmt.Errorf("%s: %w (%d)", symbol, ErrInsufficientData, len(series.Points))
	}

	now := e.now()
	ma := calculator.MovingAverage(series.Points, calculator.TrendPeriod)
	detected := catalyst.Detect(series.Points)

	metrics, err := calculator.CalculateMetrics(series, rng, now)
	if err != nil {
		return nil, fmt.Errorf("metrics %s: %w", symbol, err)
	}

	synth := &catalyst.Synthesizer{
		Ticker:      symbol,
		Tolerance:   rng.Tolerance(),
		Headline:    e.headlineFunc(metrics.CompanyName),
		NewsTimeout: e.NewsTimeout,
	}
	enriched := synth.Enrich(ctx, detected, series.Events, series.Points)

	// Enrich is best-effort and never fails; a cancelled caller still gets no result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("[INFO] %s %s: %d points, %d catalysts", symbol, rng, len(series.Points), len(enriched))
	return &Snapshot{
		Symbol:      symbol,
		Range:       rng,
		Series:      series,
		MA:          ma,
		Bullish:     calculator.Bullish(series.Points, ma),
		Metrics:     metrics,
		Catalysts:   enriched,
		Upcoming:    calculator.NextEarningsWindow(now),
		GeneratedAt: now,
	}, nil
}

func (e *Engine) headlineFunc(company string) catalyst.HeadlineFunc {
	if e.News == nil {
		return nil
	}
	return func(ctx context.Context, ticker string, date time.Time) (string, error) {
		return e.News.Headline(ctx, ticker, company, date)
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
