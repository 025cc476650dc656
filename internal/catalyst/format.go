package catalyst

import (
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

const searchBaseURL = "https://www.google.com/search?q="

// FormatPrice formats a price with precision scaled to its magnitude.
func FormatPrice(price float64) string {
	switch {
	case math.IsNaN(price):
		return "--"
	case price >= 1000:
		return "$" + humanize.FormatFloat("#,###.##", price)
	case price >= 1:
		return fmt.Sprintf("$%.2f", price)
	default:
		return fmt.Sprintf("$%.4f", price)
	}
}

// FormatPercent formats a signed percentage, e.g. "+4.20%".
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) {
		return "--"
	}
	sign := ""
	if pct >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, pct)
}

// FormatVolume abbreviates share volume, e.g. "12.35M".
func FormatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatLargeNumber abbreviates a dollar amount such as market cap.
func FormatLargeNumber(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + humanize.Comma(int64(v))
	}
}

// FormatDateShort formats a date as "Jan 2, 2006".
func FormatDateShort(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FiscalQuarterLabel returns the calendar quarter label, e.g. "Q3 FY2024".
func FiscalQuarterLabel(t time.Time) string {
	q := (int(t.Month()) + 2) / 3
	return fmt.Sprintf("Q%d FY%d", q, t.Year())
}

// SearchLink builds a web search link for query.
func SearchLink(query string) string {
	return searchBaseURL + url.QueryEscape(query)
}
