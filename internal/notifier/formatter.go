package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/jaymes17/catalyst-chart/internal/catalyst"
	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/watchlist"
)

const moveFootnote = "* % change reflects the combined price movement over the catalyst session and the following trading session."

// FormatCatalystReport formats a snapshot into a Telegram HTML message.
func FormatCatalystReport(snap *engine.Snapshot) string {
	var b strings.Builder
	m := snap.Metrics

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> (%s) | %s\n\n",
		html.EscapeString(m.CompanyName), html.EscapeString(snap.Symbol), snap.GeneratedAt.Format("2006-01-02")))

	// Price and period return
	b.WriteString(fmt.Sprintf("Price: %s %s\n", catalyst.FormatPrice(m.CurrentPrice), html.EscapeString(m.Currency)))
	b.WriteString(fmt.Sprintf("%s Return: %s\n", m.PeriodLabel, catalyst.FormatPercent(m.PeriodReturn)))
	if m.YTDReturn != nil {
		b.WriteString(fmt.Sprintf("YTD: %s\n", catalyst.FormatPercent(*m.YTDReturn)))
	}
	b.WriteString(fmt.Sprintf("ATH: %s (%s)\n", catalyst.FormatPrice(m.ATH), catalyst.FormatPercent(m.FromATH)))
	b.WriteString(fmt.Sprintf("52-pt Range: %s - %s\n", catalyst.FormatPrice(m.Low52), catalyst.FormatPrice(m.High52)))
	b.WriteString(fmt.Sprintf("Avg Volume: %s\n", catalyst.FormatVolume(m.AvgVolume)))
	if m.MarketCap > 0 {
		b.WriteString(fmt.Sprintf("Market Cap: %s\n", catalyst.FormatLargeNumber(m.MarketCap)))
	}

	// Timeline
	timeline := snap.Timeline()
	if len(timeline) > 0 {
		b.WriteString("\n⚡ <b>Key Catalysts:</b>\n")
		for _, c := range timeline {
			icon := "🔴"
			if c.Positive() {
				icon = "🟢"
			}
			title := html.EscapeString(c.Title)
			if c.Link != "" {
				title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(c.Link), title)
			}
			b.WriteString(fmt.Sprintf("%s %s  %s  <b>%s*</b>\n", icon, c.Date.Format("Jan 2, 06"), title, catalyst.FormatPercent(c.PctChange)))
			if c.Description != "" {
				b.WriteString(fmt.Sprintf("     <i>%s</i>\n", html.EscapeString(c.Description)))
			}
		}
	} else {
		b.WriteString("\nNo significant catalysts in this period.\n")
	}

	// Upcoming
	if u := snap.Upcoming; u.Visible {
		b.WriteString(fmt.Sprintf("\n📅 %s Earnings Window: %s - %s (%s)\n",
			u.Quarter, u.Start.Format("Jan 2"), u.End.Format("Jan 2"), u.Countdown))
	}

	if len(timeline) > 0 {
		b.WriteString(fmt.Sprintf("\n<i>%s</i>", html.EscapeString(moveFootnote)))
	}
	return b.String()
}

// FormatWatchlist formats the watched symbols.
func FormatWatchlist(entries []watchlist.Entry) string {
	if len(entries) == 0 {
		return "👀 Watchlist is empty. Use /watch SYMBOL [RANGE]."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, e := range entries {
		last := "never"
		if !e.LastDigest.IsZero() {
			last = e.LastDigest.Format("2006-01-02 15:04")
		}
		b.WriteString(fmt.Sprintf("%s (%s) · last digest: %s\n", html.EscapeString(e.Symbol), e.Range, last))
	}
	return b.String()
}
