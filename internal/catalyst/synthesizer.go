package catalyst

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// DefaultNewsTimeout bounds a single headline lookup.
const DefaultNewsTimeout = 10 * time.Second

// HeadlineFunc looks up a news headline for ticker around date.
// An empty string means nothing relevant was found.
type HeadlineFunc func(ctx context.Context, ticker string, date time.Time) (string, error)

// Synthesizer fills in title, description and link for detected catalysts.
type Synthesizer struct {
	Ticker      string
	Tolerance   float64 // event matching window in days
	Headline    HeadlineFunc
	NewsTimeout time.Duration
}

type newsResult struct {
	slot     int
	headline string
}

// Enrich returns a labelled copy of catalysts. Each catalyst is explained by
// the first matching tier: earnings, split, dividend, news, heuristic.
// Lookups are best-effort; Enrich never fails.
func (s *Synthesizer) Enrich(ctx context.Context, catalysts []model.Catalyst, events model.Events, points []model.PricePoint) []model.Catalyst {
	out := make([]model.Catalyst, len(catalysts))
	copy(out, catalysts)

	var pending []int
	for i := range out {
		if m, ok := MatchEvent(events, out[i].Date, s.Tolerance); ok {
			EventLabel(m, out[i], s.Ticker).apply(&out[i])
			continue
		}
		pending = append(pending, i)
	}

	headlines := s.lookupNews(ctx, out, pending)

	minClose, maxClose := closeRange(points)
	for _, slot := range pending {
		if h := headlines[slot]; h != "" {
			NewsLabel(h, out[slot], s.Ticker).apply(&out[slot])
			continue
		}
		SmartLabel(out[slot], minClose, maxClose, s.Ticker).apply(&out[slot])
	}

	// Anything still unlabelled gets the heuristic.
	for i := range out {
		if out[i].Title == "" {
			SmartLabel(out[i], minClose, maxClose, s.Ticker).apply(&out[i])
		}
	}
	return out
}

// lookupNews runs one headline lookup per slot concurrently and waits for all
// of them. Failures and timeouts are logged and dropped.
func (s *Synthesizer) lookupNews(ctx context.Context, catalysts []model.Catalyst, slots []int) map[int]string {
	headlines := make(map[int]string, len(slots))
	if s.Headline == nil || len(slots) == 0 {
		return headlines
	}

	results := make(chan newsResult, len(slots))
	var g errgroup.Group
	for _, slot := range slots {
		date := catalysts[slot].Date
		g.Go(func() error {
			h, err := s.headline(ctx, date)
			if err != nil {
				log.Printf("[WARN] news lookup %s %s: %v", s.Ticker, date.Format("2006-01-02"), err)
				return nil
			}
			results <- newsResult{slot: slot, headline: h}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for r := range results {
		headlines[r.slot] = r.headline
	}
	return headlines
}

// headline calls the lookup under its own deadline. The deadline holds even if
// the lookup ignores its context.
func (s *Synthesizer) headline(ctx context.Context, date time.Time) (string, error) {
	timeout := s.NewsTimeout
	if timeout <= 0 {
		timeout = DefaultNewsTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan newsResult, 1)
	errc := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("headline lookup panic: %v", r)
			}
		}()
		h, err := s.Headline(ctx, s.Ticker, date)
		if err != nil {
			errc <- err
			return
		}
		done <- newsResult{headline: h}
	}()

	select {
	case r := <-done:
		return r.headline, nil
	case err := <-errc:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func closeRange(points []model.PricePoint) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Close)
		hi = math.Max(hi, p.Close)
	}
	return lo, hi
}
