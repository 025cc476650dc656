package catalyst

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Label is the human-readable explanation attached to a catalyst.
type Label struct {
	Title       string
	Description string
	Link        string
	Source      model.LabelSource
}

func (l Label) apply(c *model.Catalyst) {
	c.Title = l.Title
	c.Description = l.Description
	c.Link = l.Link
	c.Source = l.Source
}

// EventLabel builds the label for a catalyst explained by an external event.
func EventLabel(m Match, c model.Catalyst, ticker string) Label {
	switch m.Kind {
	case model.SourceEarnings:
		quarter := FiscalQuarterLabel(c.Date)
		outcome := "Miss"
		if m.Earnings.Beat() {
			outcome = "Beat"
		}
		var desc string
		if m.Earnings.HasEPS() {
			desc = fmt.Sprintf("EPS: $%.2f vs $%.2f est.", *m.Earnings.EPSActual, *m.Earnings.EPSEstimate)
		}
		return Label{
			Title:       fmt.Sprintf("%s Earnings %s", quarter, outcome),
			Description: desc,
			Link:        SearchLink(ticker + " earnings " + quarter),
			Source:      model.SourceEarnings,
		}
	case model.SourceSplit:
		return Label{
			Title:       fmt.Sprintf("%s:%s Stock Split", ratioPart(m.Split.Numerator), ratioPart(m.Split.Denominator)),
			Description: FormatDateShort(c.Date),
			Link:        SearchLink(fmt.Sprintf("%s stock split %d", ticker, c.Date.Year())),
			Source:      model.SourceSplit,
		}
	default:
		desc := "Ex-dividend adjustment"
		if c.PctChange > 0 {
			desc = "Ex-dividend rally"
		}
		return Label{
			Title:       fmt.Sprintf("Dividend: $%.2f/share", m.Dividend.Amount),
			Description: desc,
			Link:        SearchLink(fmt.Sprintf("%s dividend %d", ticker, c.Date.Year())),
			Source:      model.SourceDividend,
		}
	}
}

// NewsLabel builds the label for a catalyst explained by a news headline.
func NewsLabel(headline string, c model.Catalyst, ticker string) Label {
	return Label{
		Title:       headline,
		Description: FormatDateShort(c.Date),
		Link:        SearchLink(headline + " " + ticker),
		Source:      model.SourceNews,
	}
}

// SmartLabel derives a heuristic label from the move size and where the close
// sits relative to the series extremes.
func SmartLabel(c model.Catalyst, minClose, maxClose float64, ticker string) Label {
	pct := c.PctChange
	l := Label{
		Link:   SearchLink(ticker + " stock news " + FormatDateShort(c.Date)),
		Source: model.SourceHeuristic,
	}
	moveDesc := FormatPercent(pct) + " move"

	switch {
	case c.Close >= maxClose*0.97 && pct > 0:
		l.Title, l.Description = "All-Time High Breakout", FormatPrice(c.Close)
	case c.Close <= minClose*1.03:
		l.Title, l.Description = "Multi-Year Low", FormatPrice(c.Close)
	case math.Abs(pct) > 15:
		l.Title, l.Description = pick(pct, "Major Rally", "Sharp Sell-Off"), moveDesc
	case math.Abs(pct) > 8:
		l.Title, l.Description = pick(pct, "Strong Breakout", "Significant Drop"), moveDesc
	default:
		l.Title, l.Description = pick(pct, "Notable Rally", "Notable Decline"), FormatDateShort(c.Date)
	}
	return l
}

func pick(pct float64, up, down string) string {
	if pct > 0 {
		return up
	}
	return down
}

func ratioPart(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
