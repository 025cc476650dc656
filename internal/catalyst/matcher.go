package catalyst

import (
	"math"
	"sort"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

const secondsPerDay = 86400

// Match is the external event chosen to explain a catalyst.
type Match struct {
	Kind     model.LabelSource
	Date     time.Time
	Earnings model.Earnings
	Split    model.Split
	Dividend model.Dividend
}

// findFirst returns the earliest-keyed event within maxDays of target.
// This is the first qualifying entry, not necessarily the closest one.
func findFirst[E any](events map[int64]E, target time.Time, maxDays float64) (E, time.Time, bool) {
	var zero E
	if len(events) == 0 {
		return zero, time.Time{}, false
	}
	keys := make([]int64, 0, len(events))
	for ts := range events {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	t := target.Unix()
	for _, ts := range keys {
		days := math.Abs(float64(t-ts)) / secondsPerDay
		if days <= maxDays {
			return events[ts], time.Unix(ts, 0).UTC(), true
		}
	}
	return zero, time.Time{}, false
}

// FindEarnings returns the first earnings event within tolerance days of date.
func FindEarnings(events map[int64]model.Earnings, date time.Time, tolerance float64) (model.Earnings, time.Time, bool) {
	return findFirst(events, date, tolerance)
}

// FindSplit returns the first split within tolerance days of date.
func FindSplit(events map[int64]model.Split, date time.Time, tolerance float64) (model.Split, time.Time, bool) {
	return findFirst(events, date, tolerance)
}

// FindDividend returns the first dividend within tolerance days of date.
func FindDividend(events map[int64]model.Dividend, date time.Time, tolerance float64) (model.Dividend, time.Time, bool) {
	return findFirst(events, date, tolerance)
}

// MatchEvent picks one event kind for date: earnings, then split, then dividend.
func MatchEvent(events model.Events, date time.Time, tolerance float64) (Match, bool) {
	if e, at, ok := FindEarnings(events.Earnings, date, tolerance); ok {
		return Match{Kind: model.SourceEarnings, Date: at, Earnings: e}, true
	}
	if s, at, ok := FindSplit(events.Splits, date, tolerance); ok {
		return Match{Kind: model.SourceSplit, Date: at, Split: s}, true
	}
	if d, at, ok := FindDividend(events.Dividends, date, tolerance); ok {
		return Match{Kind: model.SourceDividend, Date: at, Dividend: d}, true
	}
	return Match{}, false
}
