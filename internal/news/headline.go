package news

import (
	"regexp"
	"strings"
)

const maxHeadlineLen = 80

// Trailing " - Publisher" or " – Publisher" attribution.
var sourceSuffix = regexp.MustCompile(`\s*[-–]\s*[^-–]+$`)

// PickHeadline chooses the first title mentioning the ticker or the first word
// of the company name. If none does, the first title is used.
func PickHeadline(titles []string, ticker, company string) string {
	if len(titles) == 0 {
		return ""
	}
	tickerUp := strings.ToUpper(ticker)
	var companyFirst string
	if fields := strings.Fields(company); len(fields) > 0 {
		companyFirst = strings.ToUpper(fields[0])
	}

	for _, t := range titles {
		up := strings.ToUpper(t)
		if (tickerUp != "" && strings.Contains(up, tickerUp)) ||
			(companyFirst != "" && strings.Contains(up, companyFirst)) {
			return CleanTitle(t)
		}
	}
	return CleanTitle(titles[0])
}

// CleanTitle strips the publisher suffix and truncates long titles.
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(sourceSuffix.ReplaceAllString(title, ""))
	r := []rune(cleaned)
	if len(r) > maxHeadlineLen {
		return string(r[:maxHeadlineLen-3]) + "..."
	}
	return cleaned
}
