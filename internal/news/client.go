// Package news looks up Google News headlines for a ticker around a date.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jaymes17/catalyst-chart/internal/cache"
)

const (
	defaultBaseURL = "https://news.google.com"
	// DefaultRate is the default number of feed requests per second.
	DefaultRate = 2
)

// Client queries the Google News RSS search feed.
type Client struct {
	BaseURL string
	Client  *http.Client
	Cache   cache.Store
	TTL     time.Duration
	limiter *rate.Limiter
}

// NewClient creates a news client. requestsPerSecond and burst bound the
// outgoing request rate; zero values use the defaults.
func NewClient(proxyURL string, store cache.Store, ttl time.Duration, requestsPerSecond float64, burst int) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if store == nil {
		store = cache.NewNoopStore()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRate
	}
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		BaseURL: defaultBaseURL,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		Cache:   store,
		TTL:     ttl,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// SearchURL builds the feed query "<TICKER> stock <Month YYYY>".
func (c *Client) SearchURL(ticker string, date time.Time) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s stock %s", ticker, date.Format("January 2006")))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	return c.BaseURL + "/rss/search?" + q.Encode()
}

// Titles returns the item titles of the search feed for ticker around date.
func (c *Client) Titles(ctx context.Context, ticker string, date time.Time) ([]string, error) {
	u := c.SearchURL(ticker, date)
	body, err := cache.Fetch(ctx, c.Cache, u, c.TTL, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("news parse feed: %w", err)
	}
	titles := make([]string, 0, len(feed.Channel.Items))
	for _, it := range feed.Channel.Items {
		titles = append(titles, it.Title)
	}
	return titles, nil
}

// Headline returns the most relevant cleaned headline, or "" when the feed is empty.
func (c *Client) Headline(ctx context.Context, ticker, company string, date time.Time) (string, error) {
	titles, err := c.Titles(ctx, ticker, date)
	if err != nil {
		return "", err
	}
	return PickHeadline(titles, ticker, company), nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("news rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("news read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news HTTP %d", resp.StatusCode)
	}
	return body, nil
}
