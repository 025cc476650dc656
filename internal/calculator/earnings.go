package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Most US companies report in late Feb, May, Aug and Nov.
var reportMonths = []time.Month{time.February, time.May, time.August, time.November}

const (
	reportDay         = 20
	windowLeadDays    = 15
	maxVisibleHorizon = 120
)

// EstimateNextEarnings returns the next estimated report date after now.
func EstimateNextEarnings(now time.Time) time.Time {
	for _, m := range reportMonths {
		candidate := time.Date(now.Year(), m, reportDay, 0, 0, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	return time.Date(now.Year()+1, reportMonths[0], reportDay, 0, 0, 0, 0, now.Location())
}

// NextEarningsWindow describes the upcoming earnings window relative to now.
func NextEarningsWindow(now time.Time) model.EarningsWindow {
	end := EstimateNextEarnings(now)
	days := int(math.Ceil(end.Sub(now).Hours() / 24))

	// Reports in Feb cover Q4, May Q1, Aug Q2, Nov Q3.
	quarters := []string{"Q4", "Q1", "Q2", "Q3"}

	var countdown string
	switch {
	case days <= 0:
		countdown = "Now"
	case days == 1:
		countdown = "Tomorrow"
	default:
		countdown = fmt.Sprintf("~%d days", days)
	}

	return model.EarningsWindow{
		Quarter:   quarters[(int(end.Month())-1)/3],
		Start:     model.Date{Time: end.AddDate(0, 0, -windowLeadDays)},
		End:       model.Date{Time: end},
		DaysUntil: days,
		Countdown: countdown,
		Visible:   days <= maxVisibleHorizon,
	}
}
