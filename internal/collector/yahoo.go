package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/cache"
	"github.com/jaymes17/catalyst-chart/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Cache   cache.Store
	TTL     time.Duration
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, store cache.Store, ttl time.Duration) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if store == nil {
		store = cache.NewNoopStore()
	}
	return &YahooFetcher{
		BaseURL: defaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		Cache: store,
		TTL:   ttl,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string  `json:"symbol"`
				ShortName string  `json:"shortName"`
				LongName  string  `json:"longName"`
				Currency  string  `json:"currency"`
				MarketCap float64 `json:"marketCap"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Earnings map[string]struct {
					EPSActual   *float64 `json:"epsActual"`
					EPSEstimate *float64 `json:"epsEstimate"`
				} `json:"earnings"`
				Splits map[string]struct {
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) chartURL(symbol string, rng model.Range) string {
	q := url.Values{}
	q.Set("range", rng.YahooRange())
	q.Set("interval", rng.Interval())
	q.Set("includePrePost", "false")
	q.Set("events", "div|split|earn")
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// FetchSeries fetches the price history, metadata and events for symbol.
func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol string, rng model.Range) (*model.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	u := f.chartURL(symbol, rng)
	body, err := cache.Fetch(ctx, f.Cache, u, f.TTL, func(ctx context.Context) ([]byte, error) {
		return f.get(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return parseChart(symbol, body)
}

func parseChart(symbol string, body []byte) (*model.Series, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %q, check the symbol and try again", ErrNoData, symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoData, symbol)
	}
	quote := result.Indicators.Quote[0]

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // sessions without a close (holidays, partial bars)
		}
		points = append(points, model.PricePoint{
			Date:      time.Unix(ts, 0).UTC(),
			Timestamp: ts,
			Open:      value(at(quote.Open, i)),
			High:      value(at(quote.High, i)),
			Low:       value(at(quote.Low, i)),
			Close:     *c,
			Volume:    value(at(quote.Volume, i)),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })

	events := model.Events{
		Earnings:  make(map[int64]model.Earnings, len(result.Events.Earnings)),
		Splits:    make(map[int64]model.Split, len(result.Events.Splits)),
		Dividends: make(map[int64]model.Dividend, len(result.Events.Dividends)),
	}
	for k, e := range result.Events.Earnings {
		if ts, err := strconv.ParseInt(k, 10, 64); err == nil {
			events.Earnings[ts] = model.Earnings{EPSActual: e.EPSActual, EPSEstimate: e.EPSEstimate}
		}
	}
	for k, s := range result.Events.Splits {
		if ts, err := strconv.ParseInt(k, 10, 64); err == nil {
			events.Splits[ts] = model.Split{Numerator: s.Numerator, Denominator: s.Denominator}
		}
	}
	for k, d := range result.Events.Dividends {
		if ts, err := strconv.ParseInt(k, 10, 64); err == nil {
			events.Dividends[ts] = model.Dividend{Amount: d.Amount}
		}
	}

	meta := model.Meta{
		Symbol:    result.Meta.Symbol,
		ShortName: result.Meta.ShortName,
		LongName:  result.Meta.LongName,
		Currency:  result.Meta.Currency,
		MarketCap: result.Meta.MarketCap,
	}
	if meta.Symbol == "" {
		meta.Symbol = symbol
	}

	return &model.Series{
		Symbol:    symbol,
		Points:    points,
		Meta:      meta,
		Events:    events,
		FetchedAt: time.Now(),
	}, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
