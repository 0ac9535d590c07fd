package tripplan

// Locale carries the keyword and preposition tables the slot extractor is
// driven by. Adding a language is additive configuration: build a Locale and
// pass it to NewExtractor, no rule code changes needed.
type Locale struct {
	Code string

	// Prepositions that introduce a destination ("to Paris") or an origin
	// ("from London").
	DestinationPreps []string
	OriginPreps      []string

	// Month names, in calendar order, lowercase.
	Months []string
	// Prepositions that lead into a month-only date mention ("in June").
	DatePreps []string

	// Duration unit words, lowercase, singular and plural forms.
	DayWords   []string
	WeekWords  []string
	MonthWords []string

	// Traveler keyword families. First matching family wins.
	CoupleWords []string
	SoloWords   []string
	FamilyWords []string

	// Purpose keyword families, checked in order.
	CultureWords    []string
	GastronomyWords []string
	ExploringWords  []string
	AdventureWords  []string
}

// EnglishLocale is the default rule set.
var EnglishLocale = Locale{
	Code:             "en",
	DestinationPreps: []string{"to", "in", "visit"},
	OriginPreps:      []string{"from"},
	Months: []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	},
	DatePreps:       []string{"in", "during", "around"},
	DayWords:        []string{"day", "days", "night", "nights"},
	WeekWords:       []string{"week", "weeks"},
	MonthWords:      []string{"month", "months"},
	CoupleWords:     []string{"wife", "husband", "partner", "spouse", "girlfriend", "boyfriend", "fiancee", "fiance", "couple"},
	SoloWords:       []string{"solo", "alone", "by myself", "myself"},
	FamilyWords:     []string{"family", "kids", "children"},
	CultureWords:    []string{"culture", "cultural", "museum", "museums", "history", "historical", "art"},
	GastronomyWords: []string{"food", "gastronomy", "restaurant", "restaurants", "culinary", "cuisine", "eat"},
	ExploringWords:  []string{"explore", "exploring", "sightseeing", "discover", "wander"},
	AdventureWords:  []string{"adventure", "hiking", "trekking", "outdoor", "climbing"},
}

// SpanishLocale extends coverage to Spanish utterances. The TRIP_READY
// marker itself is never localized, only the surrounding natural language.
var SpanishLocale = Locale{
	Code:             "es",
	DestinationPreps: []string{"a", "hacia", "en", "visitar"},
	OriginPreps:      []string{"desde", "de"},
	Months: []string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	},
	DatePreps:       []string{"en", "durante"},
	DayWords:        []string{"día", "días", "dia", "dias", "noche", "noches"},
	WeekWords:       []string{"semana", "semanas"},
	MonthWords:      []string{"mes", "meses"},
	CoupleWords:     []string{"esposa", "esposo", "pareja", "novia", "novio", "marido", "mujer"},
	SoloWords:       []string{"solo", "sola"},
	FamilyWords:     []string{"familia", "niños", "hijos"},
	CultureWords:    []string{"cultura", "museo", "museos", "historia", "arte"},
	GastronomyWords: []string{"comida", "gastronomía", "gastronomia", "restaurante", "restaurantes"},
	ExploringWords:  []string{"explorar", "descubrir", "recorrer"},
	AdventureWords:  []string{"aventura", "senderismo"},
}

// DefaultLocales is the locale set the service runs with.
var DefaultLocales = []Locale{EnglishLocale, SpanishLocale}

// gazetteerEntry maps a recognized city or country name to its canonical
// English form. Alternate-language spellings canonicalize to one name so a
// Spanish utterance and an English one land on the same destination.
type gazetteerEntry struct {
	Match     string
	Canonical string
}

// gazetteer is the fixed fallback list used when pattern-based destination
// extraction fails. Matching is word-boundary aware; longer names claim
// their span first so "New York" is never read as "York", and among
// disjoint matches the earliest mention in the message wins.
var gazetteer = []gazetteerEntry{
	{"paris", "Paris"},
	{"parís", "Paris"},
	{"london", "London"},
	{"londres", "London"},
	{"tokyo", "Tokyo"},
	{"tokio", "Tokyo"},
	{"new york", "New York"},
	{"nueva york", "New York"},
	{"rome", "Rome"},
	{"roma", "Rome"},
	{"barcelona", "Barcelona"},
	{"madrid", "Madrid"},
	{"lisbon", "Lisbon"},
	{"lisboa", "Lisbon"},
	{"amsterdam", "Amsterdam"},
	{"berlin", "Berlin"},
	{"berlín", "Berlin"},
	{"prague", "Prague"},
	{"praga", "Prague"},
	{"vienna", "Vienna"},
	{"viena", "Vienna"},
	{"bali", "Bali"},
	{"bangkok", "Bangkok"},
	{"singapore", "Singapore"},
	{"singapur", "Singapore"},
	{"dubai", "Dubai"},
	{"istanbul", "Istanbul"},
	{"estambul", "Istanbul"},
	{"santorini", "Santorini"},
	{"kyoto", "Kyoto"},
	{"kioto", "Kyoto"},
	{"sydney", "Sydney"},
	{"sídney", "Sydney"},
	{"italy", "Italy"},
	{"italia", "Italy"},
	{"japan", "Japan"},
	{"japón", "Japan"},
	{"japon", "Japan"},
	{"spain", "Spain"},
	{"españa", "Spain"},
	{"france", "France"},
	{"francia", "France"},
	{"portugal", "Portugal"},
	{"greece", "Greece"},
	{"grecia", "Greece"},
	{"thailand", "Thailand"},
	{"tailandia", "Thailand"},
	{"morocco", "Morocco"},
	{"marruecos", "Morocco"},
	{"mexico", "Mexico"},
	{"méxico", "Mexico"},
	{"peru", "Peru"},
	{"perú", "Peru"},
	{"iceland", "Iceland"},
	{"islandia", "Iceland"},
}
