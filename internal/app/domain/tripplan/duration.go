package tripplan

import (
	"regexp"
	"strconv"
)

// DefaultDayCap is the MVP itinerary-length limit in days. A policy
// constant, not a domain limit; overridable via config.
const DefaultDayCap = 7

// fallbackDays is used when a duration string yields no match at all.
const fallbackDays = 5

// The unit expressions are generated from the locale tables, so a new
// language's duration words arrive with its Locale.
var (
	weekExprRe  = durationUnitRe(unitWords(func(l Locale) []string { return l.WeekWords }))
	monthExprRe = durationUnitRe(unitWords(func(l Locale) []string { return l.MonthWords }))
	dayExprRe   = durationUnitRe(unitWords(func(l Locale) []string { return l.DayWords }))
	bareNumRe   = regexp.MustCompile(`(\d+)`)
)

func unitWords(pick func(Locale) []string) []string {
	var words []string
	for _, loc := range DefaultLocales {
		words = append(words, pick(loc)...)
	}
	return words
}

func durationUnitRe(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(\d+)\s*(?:` + alternation(words) + `)`)
}

// NormalizeDuration converts a free-form duration expression into a day
// count capped at capDays. Keyword rules run before the bare-integer
// fallback, since "2 weeks" contains a bare 2 that would otherwise be
// misread. A bare integer <= 4 is assumed to mean weeks; larger ones mean
// days.
func NormalizeDuration(raw string, capDays int) int {
	if capDays <= 0 {
		capDays = DefaultDayCap
	}

	if m := weekExprRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return minDays(n*7, capDays)
	}
	if monthExprRe.MatchString(raw) {
		// Months always saturate the cap: "as many days as allowed".
		return capDays
	}
	if m := dayExprRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return minDays(n, capDays)
	}
	if m := bareNumRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n <= 4 {
			return minDays(n*7, capDays)
		}
		return minDays(n, capDays)
	}
	return minDays(fallbackDays, capDays)
}

func minDays(n, capDays int) int {
	if n < 1 {
		return 1
	}
	if n > capDays {
		return capDays
	}
	return n
}
