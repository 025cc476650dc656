package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jaymes17/catalyst-chart/internal/engine"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	// maxMessageRunes is the Bot API limit for one sendMessage text.
	maxMessageRunes = 4096
	// DefaultReportRetries is how often a failed report send is retried.
	DefaultReportRetries = 3
)

// APIError is a Bot API call that came back with ok=false.
type APIError struct {
	Method      string
	Status      int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.Status, e.Description)
}

// Temporary reports whether the call may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// TelegramNotifier delivers catalyst reports and command replies through the
// Telegram Bot API. Sends are paced by Limiter to stay under the per-chat
// flood limit.
type TelegramNotifier struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	Client     *http.Client
	Limiter    *rate.Limiter
	MaxRetries int

	backoff func(attempt int) time.Duration // nil means 1s, 2s, 4s...
}

// NewTelegramNotifier creates a notifier for chatID, optionally behind an
// HTTP proxy.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BaseURL:    defaultTelegramBaseURL,
		BotToken:   botToken,
		ChatID:     chatID,
		Client:     &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
		MaxRetries: DefaultReportRetries,
	}
}

// SendReport formats snap and sends it to the configured chat, retrying
// transient failures.
func (t *TelegramNotifier) SendReport(ctx context.Context, snap *engine.Snapshot) error {
	if err := t.SendWithRetry(ctx, FormatCatalystReport(snap), t.MaxRetries); err != nil {
		return fmt.Errorf("report %s: %w", snap.Symbol, err)
	}
	return nil
}

// Send sends text to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendTo(ctx, t.ChatID, text)
}

// SendTo sends an HTML message to chatID. Text longer than one Telegram
// message goes out as several, split on line breaks.
func (t *TelegramNotifier) SendTo(ctx context.Context, chatID, text string) error {
	for _, part := range splitMessage(text, maxMessageRunes) {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		payload := map[string]any{
			"chat_id":                  chatID,
			"text":                     part,
			"parse_mode":               "HTML",
			"disable_web_page_preview": true,
		}
		if err := t.call(ctx, t.Client, "sendMessage", payload, nil); err != nil {
			return err
		}
	}
	return nil
}

// SendWithRetry sends text, retrying rate limits and server errors. A
// retry_after hint from Telegram takes precedence over the backoff.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if attempt == maxRetries {
			break
		}
		wait := time.Duration(1<<attempt) * time.Second
		if t.backoff != nil {
			wait = t.backoff(attempt)
		}
		if apiErr != nil && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", attempt+1, maxRetries+1, err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}

// call posts payload to a Bot API method and decodes the result into out
// when out is non-nil.
func (t *TelegramNotifier) call(ctx context.Context, client *http.Client, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}
	apiURL := fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil || !result.OK || resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Method: method, Status: resp.StatusCode, Description: result.Description}
		if apiErr.Description == "" {
			apiErr.Description = strings.TrimSpace(string(raw))
		}
		if result.Parameters != nil {
			apiErr.RetryAfter = time.Duration(result.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if out != nil && len(result.Result) > 0 {
		if err := json.Unmarshal(result.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// splitMessage cuts text into parts of at most limit runes, preferring line
// breaks. A single line longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var parts []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			parts = append(parts, strings.TrimRight(string(cur), "\n"))
			cur = cur[:0]
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			parts = append(parts, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return parts
}
