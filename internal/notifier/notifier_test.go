package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/model"
	"github.com/jaymes17/catalyst-chart/internal/watchlist"
)

func testSnapshot() *engine.Snapshot {
	ytd := 12.5
	d1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	return &engine.Snapshot{
		Symbol: "ACME",
		Range:  model.Range1Y,
		Metrics: model.Metrics{
			CompanyName:  "Acme & Sons",
			Currency:     "USD",
			CurrentPrice: 1234.5,
			PeriodReturn: 20,
			PeriodLabel:  "1Y",
			YTDReturn:    &ytd,
			ATH:          1300,
			FromATH:      -5.04,
			High52:       1300,
			Low52:        900,
			AvgVolume:    2.5e6,
			MarketCap:    3e12,
		},
		Catalysts: []model.Catalyst{
			{Index: 10, Date: d1, PctChange: 6.1, Title: "Q1 FY2024 Earnings Beat", Link: "https://example.com/?q=a&b", Source: model.SourceEarnings},
			{Index: 50, Date: d2, PctChange: -4.3, Title: "Sharp Sell-Off <b>", Description: "-4.3% move", Source: model.SourceHeuristic},
		},
		Upcoming: model.EarningsWindow{
			Quarter: "Q2", Start: model.Date{Time: end.AddDate(0, 0, -15)}, End: model.Date{Time: end},
			Countdown: "~40 days", Visible: true,
		},
		GeneratedAt: time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatCatalystReport(t *testing.T) {
	msg := FormatCatalystReport(testSnapshot())

	for _, want := range []string{
		"<b>Acme &amp; Sons</b> (ACME)",
		"Price: $1,234.50 USD",
		"1Y Return: +20.00%",
		"YTD: +12.50%",
		"Market Cap: $3.00T",
		`<a href="https://example.com/?q=a&amp;b">Q1 FY2024 Earnings Beat</a>`,
		"<b>-4.30%*</b>",
		"Sharp Sell-Off &lt;b&gt;",
		"Q2 Earnings Window: Aug 5 - Aug 20 (~40 days)",
		"combined price movement",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}

	// Newest first.
	if strings.Index(msg, "Sharp Sell-Off") > strings.Index(msg, "Earnings Beat") {
		t.Error("expected timeline newest first")
	}
}

func TestFormatCatalystReport_Empty(t *testing.T) {
	snap := testSnapshot()
	snap.Catalysts = nil
	snap.Upcoming.Visible = false
	msg := FormatCatalystReport(snap)
	if !strings.Contains(msg, "No significant catalysts") {
		t.Errorf("expected empty-timeline note:\n%s", msg)
	}
	if strings.Contains(msg, "Earnings Window") || strings.Contains(msg, "combined price movement") {
		t.Errorf("expected no window or footnote:\n%s", msg)
	}
}

func TestFormatWatchlist(t *testing.T) {
	if !strings.Contains(FormatWatchlist(nil), "empty") {
		t.Error("expected empty watchlist message")
	}
	msg := FormatWatchlist([]watchlist.Entry{{Symbol: "ACME", Range: model.RangeMax}})
	if !strings.Contains(msg, "ACME (MAX) · last digest: never") {
		t.Errorf("unexpected watchlist message %q", msg)
	}
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	if err := n.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Errorf("unexpected path %q", path)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"bad"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	if err := n.Send(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("expected status error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.SendWithRetry(ctx, "x", 3); err == nil {
		t.Error("expected retry to stop on cancelled context")
	}
}

func TestTelegramNotifier_SendReport(t *testing.T) {
	var mu sync.Mutex
	var texts []string
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"description":"Too Many Requests","parameters":{"retry_after":0}}`))
			return
		}
		texts = append(texts, body["text"].(string))
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	n.Limiter = nil
	n.backoff = func(int) time.Duration { return time.Millisecond }

	if err := n.SendReport(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("send report: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 || len(texts) != 1 {
		t.Fatalf("expected one retry after 429, got %d attempts", attempts)
	}
	if !strings.Contains(texts[0], "<b>Acme &amp; Sons</b> (ACME)") {
		t.Errorf("expected formatted report, got %q", texts[0])
	}
}

func TestTelegramNotifier_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	n.backoff = func(int) time.Duration { return time.Millisecond }

	err := n.SendWithRetry(context.Background(), "x", 3)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden || apiErr.Temporary() {
		t.Fatalf("expected permanent API error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected no retries, got %d attempts", attempts)
	}
}

func TestSplitMessage(t *testing.T) {
	line := strings.Repeat("a", 9) + "\n"
	text := strings.Repeat(line, 5)

	parts := splitMessage(text, 25)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %q", len(parts), parts)
	}
	for _, p := range parts {
		if len([]rune(p)) > 25 || strings.HasSuffix(p, "\n") {
			t.Errorf("bad part %q", p)
		}
	}
	if strings.Join(parts, "\n") != strings.TrimRight(text, "\n") {
		t.Error("split lost text")
	}

	long := strings.Repeat("é", 60)
	if parts := splitMessage(long, 25); len(parts) != 3 || len([]rune(parts[2])) != 10 {
		t.Errorf("expected long line cut into 25/25/10, got %q", parts)
	}
	if parts := splitMessage("short", 25); len(parts) != 1 || parts[0] != "short" {
		t.Errorf("unexpected short split %q", parts)
	}
}

func TestTelegramNotifier_Polling(t *testing.T) {
	var mu sync.Mutex
	var replies []map[string]any
	polls := 0
	sent := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			mu.Lock()
			polls++
			first := polls == 1
			mu.Unlock()
			if first {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":" /list ","chat":{"id":42}}},
					{"update_id":8,"message":{"text":"/list","chat":{"id":99}}}]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body)
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
			sent <- struct{}{}
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	var commands []string
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			commands = append(commands, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case <-sent:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	if len(commands) != 1 || commands[0] != "/list" {
		t.Errorf("expected only the configured chat's trimmed command, got %v", commands)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 || replies[0]["chat_id"] != "42" {
		t.Errorf("unexpected replies %v", replies)
	}
}
