package tripplan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aryatravel/arya/internal/app/models"
)

// Traveler descriptors produced by the extractor.
const (
	TravelersCouple = "2 people (couple)"
	TravelersSolo   = "1 person (solo)"
	TravelersFamily = "family"
)

// Purpose tags produced by the extractor.
const (
	PurposeCulture    = "culture"
	PurposeGastronomy = "gastronomy"
	PurposeExploring  = "exploring"
	PurposeAdventure  = "adventure"
)

// slotRule is one (slot, extractor) pair. Rules are applied in order, each
// independent, and a rule only fires when its slot is still unset.
type slotRule struct {
	slot    string
	extract func(message string) (string, bool)
}

// Extractor parses a single user utterance into candidate trip slots. It is
// a pure function over its inputs; absence of a match leaves a slot
// untouched, never sets an empty value, and never raises an error.
type Extractor struct {
	rules []slotRule

	destPatterns   []*regexp.Regexp
	originPatterns []*regexp.Regexp
	rangePatterns  []*regexp.Regexp
	dayMonthFirst  []*regexp.Regexp
	monthDayFirst  []*regexp.Regexp
	monthWithPrep  []*regexp.Regexp
	bareMonth      []*regexp.Regexp
	durationRes    []*regexp.Regexp

	coupleRes    []*regexp.Regexp
	soloRes      []*regexp.Regexp
	familyRes    []*regexp.Regexp
	cultureRes   []*regexp.Regexp
	gastroRes    []*regexp.Regexp
	exploringRes []*regexp.Regexp
	adventureRes []*regexp.Regexp

	gazetteer []gazetteerMatcher
}

type gazetteerMatcher struct {
	re        *regexp.Regexp
	canonical string
}

// NewExtractor builds an extractor for the given locales. With no locales,
// DefaultLocales is used.
func NewExtractor(locales ...Locale) *Extractor {
	if len(locales) == 0 {
		locales = DefaultLocales
	}

	e := &Extractor{}
	for _, loc := range locales {
		e.compileLocale(loc)
	}

	// Longest gazetteer entries first so "New York" claims its span
	// before "York" can; span selection happens in gazetteerMatch.
	entries := make([]gazetteerEntry, len(gazetteer))
	copy(entries, gazetteer)
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Match) > len(entries[j].Match)
	})
	for _, entry := range entries {
		e.gazetteer = append(e.gazetteer, gazetteerMatcher{
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(entry.Match) + `\b`),
			canonical: entry.Canonical,
		})
	}

	e.rules = []slotRule{
		{slot: "destination", extract: e.extractDestination},
		{slot: "origin", extract: e.extractOrigin},
		{slot: "travelers", extract: e.extractTravelers},
		{slot: "dates", extract: e.extractDates},
		{slot: "duration", extract: e.extractDuration},
		{slot: "purpose", extract: e.extractPurpose},
	}
	return e
}

func (e *Extractor) compileLocale(loc Locale) {
	capWords := `(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`

	destPreps := alternation(loc.DestinationPreps)
	e.destPatterns = append(e.destPatterns,
		regexp.MustCompile(`\b(?i:`+destPreps+`)\s+`+capWords))

	originPreps := alternation(loc.OriginPreps)
	e.originPatterns = append(e.originPatterns,
		regexp.MustCompile(`\b(?i:`+originPreps+`)\s+`+capWords))

	months := alternation(loc.Months)
	ordinal := `(?:st|nd|rd|th)?`
	connector := `(?:of\s+|de\s+)?`
	e.rangePatterns = append(e.rangePatterns,
		regexp.MustCompile(`(?i)\b(?:from|del)\s+(\d{1,2})`+ordinal+`\s*`+connector+`(`+months+`)\s+(?:to|al|a)\s+(\d{1,2})`+ordinal+`\s*`+connector+`(`+months+`)`))
	e.dayMonthFirst = append(e.dayMonthFirst,
		regexp.MustCompile(`(?i)\b(\d{1,2})`+ordinal+`\s+`+connector+`(`+months+`)\b`))
	e.monthDayFirst = append(e.monthDayFirst,
		regexp.MustCompile(`(?i)\b(`+months+`)\s+(\d{1,2})`+ordinal+`\b`))
	e.monthWithPrep = append(e.monthWithPrep,
		regexp.MustCompile(`(?i)\b(?:`+alternation(loc.DatePreps)+`)\s+(`+months+`)\b`))
	e.bareMonth = append(e.bareMonth,
		regexp.MustCompile(`(?i)\b(`+months+`)\b`))

	e.durationRes = append(e.durationRes,
		regexp.MustCompile(`(?i)\b(\d+)\s*(?:`+alternation(loc.DayWords)+`)\b`))

	e.coupleRes = append(e.coupleRes, keywordRes(loc.CoupleWords)...)
	e.soloRes = append(e.soloRes, keywordRes(loc.SoloWords)...)
	e.familyRes = append(e.familyRes, keywordRes(loc.FamilyWords)...)
	e.cultureRes = append(e.cultureRes, keywordRes(loc.CultureWords)...)
	e.gastroRes = append(e.gastroRes, keywordRes(loc.GastronomyWords)...)
	e.exploringRes = append(e.exploringRes, keywordRes(loc.ExploringWords)...)
	e.adventureRes = append(e.adventureRes, keywordRes(loc.AdventureWords)...)
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func keywordRes(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}

// Extract runs all slot rules over one utterance and returns the candidate
// partial slots. Slots already filled in current are not re-derived.
func (e *Extractor) Extract(message string, current models.TripSlots) models.TripSlots {
	candidate := models.TripSlots{}
	for _, rule := range e.rules {
		if slotValue(current, rule.slot) != "" {
			continue
		}
		if value, ok := rule.extract(message); ok {
			setSlot(&candidate, rule.slot, value)
		}
	}
	return candidate
}

func (e *Extractor) extractDestination(message string) (string, bool) {
	for _, re := range e.destPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			dest := strings.TrimRight(strings.TrimSpace(m[1]), ".,!?;")
			// "in June" is a date mention, not a destination.
			if dest == "" || e.looksLikeMonth(dest) {
				continue
			}
			return dest, true
		}
	}
	if canonical := e.gazetteerMatch(message); canonical != "" {
		return canonical, true
	}
	return "", false
}

// gazetteerMatch scans for known place names. Entries run longest first so
// "New York" claims its span before "York" can, but among disjoint matches
// the earliest mention in the message wins. A city already claimed by an
// origin phrase is not a destination candidate, so "Paris from Madrid"
// resolves to Paris.
func (e *Extractor) gazetteerMatch(message string) string {
	origin := e.originSpan(message)

	best := ""
	bestStart := -1
	var claimed [][2]int
	for _, gm := range e.gazetteer {
		for _, loc := range gm.re.FindAllStringIndex(message, -1) {
			span := [2]int{loc[0], loc[1]}
			if spansOverlap(span, origin) || overlapsAny(span, claimed) {
				continue
			}
			claimed = append(claimed, span)
			if bestStart == -1 || span[0] < bestStart {
				bestStart = span[0]
				best = gm.canonical
			}
		}
	}
	return best
}

// originSpan locates the capture range of the first origin phrase in the
// message, or {-1, -1} when there is none.
func (e *Extractor) originSpan(message string) [2]int {
	for _, re := range e.originPatterns {
		if m := re.FindStringSubmatchIndex(message); m != nil && m[2] >= 0 {
			if e.looksLikeMonth(strings.TrimSpace(message[m[2]:m[3]])) {
				continue
			}
			return [2]int{m[2], m[3]}
		}
	}
	return [2]int{-1, -1}
}

func spansOverlap(a, b [2]int) bool {
	return a[0] < b[1] && b[0] < a[1]
}

func overlapsAny(span [2]int, claimed [][2]int) bool {
	for _, c := range claimed {
		if spansOverlap(span, c) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractOrigin(message string) (string, bool) {
	for _, re := range e.originPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			origin := strings.TrimRight(strings.TrimSpace(m[1]), ".,!?; ")
			if origin == "" || e.looksLikeMonth(origin) {
				continue
			}
			return origin, true
		}
	}
	return "", false
}

// looksLikeMonth guards the origin rule against date ranges: "from 3 June to
// 5 July" must not yield an origin of "June".
func (e *Extractor) looksLikeMonth(candidate string) bool {
	first := strings.Fields(candidate)[0]
	for _, re := range e.bareMonth {
		if re.MatchString(first) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractTravelers(message string) (string, bool) {
	if matchAny(e.coupleRes, message) {
		return TravelersCouple, true
	}
	if matchAny(e.soloRes, message) {
		return TravelersSolo, true
	}
	if matchAny(e.familyRes, message) {
		return TravelersFamily, true
	}
	return "", false
}

// extractDates tries, in order: an explicit cross-month range, a single
// day+month occurrence, a month introduced by a preposition, and a bare
// month. Month-only mentions default to day 1. Only the first rule fires.
func (e *Extractor) extractDates(message string) (string, bool) {
	for _, re := range e.rangePatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			return fmt.Sprintf("%s %s to %s %s", m[1], titleCase(m[2]), m[3], titleCase(m[4])), true
		}
	}
	for _, re := range e.dayMonthFirst {
		if m := re.FindStringSubmatch(message); m != nil {
			return fmt.Sprintf("%s %s", m[1], titleCase(m[2])), true
		}
	}
	for _, re := range e.monthDayFirst {
		if m := re.FindStringSubmatch(message); m != nil {
			return fmt.Sprintf("%s %s", m[2], titleCase(m[1])), true
		}
	}
	for _, re := range e.monthWithPrep {
		if m := re.FindStringSubmatch(message); m != nil {
			return "1 " + titleCase(m[1]), true
		}
	}
	for _, re := range e.bareMonth {
		if m := re.FindStringSubmatch(message); m != nil {
			return "1 " + titleCase(m[1]), true
		}
	}
	return "", false
}

func (e *Extractor) extractDuration(message string) (string, bool) {
	for _, re := range e.durationRes {
		if m := re.FindStringSubmatch(message); m != nil {
			return m[1] + " days", true
		}
	}
	return "", false
}

func (e *Extractor) extractPurpose(message string) (string, bool) {
	if matchAny(e.cultureRes, message) {
		return PurposeCulture, true
	}
	if matchAny(e.gastroRes, message) {
		return PurposeGastronomy, true
	}
	if matchAny(e.exploringRes, message) {
		return PurposeExploring, true
	}
	if matchAny(e.adventureRes, message) {
		return PurposeAdventure, true
	}
	return "", false
}

func matchAny(res []*regexp.Regexp, message string) bool {
	for _, re := range res {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

func titleCase(word string) string {
	return cases.Title(language.Und).String(word)
}

func slotValue(s models.TripSlots, slot string) string {
	switch slot {
	case "destination":
		return s.Destination
	case "origin":
		return s.Origin
	case "travelers":
		return s.Travelers
	case "dates":
		return s.Dates
	case "duration":
		return s.Duration
	case "purpose":
		return s.Purpose
	}
	return ""
}

func setSlot(s *models.TripSlots, slot, value string) {
	switch slot {
	case "destination":
		s.Destination = value
	case "origin":
		s.Origin = value
	case "travelers":
		s.Travelers = value
	case "dates":
		s.Dates = value
	case "duration":
		s.Duration = value
	case "purpose":
		s.Purpose = value
	}
}
