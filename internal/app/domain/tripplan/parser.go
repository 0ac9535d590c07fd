package tripplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/models"
)

// partialThreshold is the fraction of the requested day count below which a
// parsed itinerary is flagged as partial. Partial itineraries are accepted,
// logged, and displayed as-is; LLM output length is not fully controllable.
const partialThreshold = 0.8

// rawDayPlan tolerates the structural gaps LLM output tends to have:
// missing day numbers, missing titles, activities that are not an array.
type rawDayPlan struct {
	Day           int                `json:"day"`
	Title         string             `json:"title"`
	Date          string             `json:"date"`
	Activities    json.RawMessage    `json:"activities"`
	Accommodation models.PlaceOrText `json:"accommodation"`
	Dining        models.PlaceOrText `json:"dining"`
}

type rawItineraryDocument struct {
	Destination string          `json:"destination"`
	Origin      string          `json:"origin"`
	Duration    string          `json:"duration"`
	Travelers   string          `json:"travelers"`
	Purpose     string          `json:"purpose"`
	Dates       string          `json:"dates"`
	Itinerary   []rawDayPlan    `json:"itinerary"`
	Tips        []string        `json:"tips"`
}

// ParseItineraryResponse locates the JSON object inside a generation
// response, parses it, and repairs structural gaps into a consistent
// ItineraryDocument. Top-level fields missing from the parsed document are
// backfilled from the resolved request used in the generation prompt.
//
// Positional order of the itinerary array is authoritative: day numbers are
// renumbered to index+1 regardless of what the model produced.
func ParseItineraryResponse(responseText string, req models.ResolvedTripRequest, requestedDays int, logger *zap.Logger) (*models.ItineraryDocument, error) {
	jsonText := extractJSONObject(responseText)
	if jsonText == "" {
		return nil, fmt.Errorf("parse itinerary response: %w", models.ErrMalformedResponse)
	}

	var raw rawItineraryDocument
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		logger.Warn("Itinerary JSON did not unmarshal", zap.Error(err))
		return nil, fmt.Errorf("parse itinerary response: %w", models.ErrMalformedResponse)
	}

	if len(raw.Itinerary) == 0 {
		return nil, fmt.Errorf("parse itinerary response: %w", models.ErrEmptyItinerary)
	}

	doc := &models.ItineraryDocument{
		Destination: fallback(raw.Destination, req.Destination),
		Origin:      fallback(raw.Origin, req.Origin),
		Duration:    fallback(raw.Duration, req.Duration),
		Travelers:   fallback(raw.Travelers, req.Travelers),
		Purpose:     fallback(raw.Purpose, req.Purpose),
		Dates:       fallback(raw.Dates, req.Dates),
		Tips:        raw.Tips,
	}
	if doc.Tips == nil {
		doc.Tips = []string{}
	}

	doc.Itinerary = make([]models.DayPlan, 0, len(raw.Itinerary))
	for i, day := range raw.Itinerary {
		repaired := models.DayPlan{
			Day:           i + 1,
			Title:         fallback(day.Title, fmt.Sprintf("Day %d", i+1)),
			Date:          day.Date,
			Activities:    repairActivities(day.Activities, i+1, logger),
			Accommodation: day.Accommodation,
			Dining:        day.Dining,
		}
		doc.Itinerary = append(doc.Itinerary, repaired)
	}

	if requestedDays > 0 && float64(len(doc.Itinerary)) < partialThreshold*float64(requestedDays) {
		logger.Warn("Partial itinerary accepted",
			zap.Int("requested_days", requestedDays),
			zap.Int("generated_days", len(doc.Itinerary)))
	}

	return doc, nil
}

// repairActivities coerces a day's activities to a valid slice. A missing or
// malformed array degrades to empty with a warning rather than failing the
// whole document.
func repairActivities(raw json.RawMessage, day int, logger *zap.Logger) []models.Activity {
	if len(raw) == 0 {
		return []models.Activity{}
	}
	var activities []models.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		logger.Warn("Malformed activities array, coercing to empty",
			zap.Int("day", day),
			zap.Error(err))
		return []models.Activity{}
	}
	if activities == nil {
		return []models.Activity{}
	}
	return activities
}

// extractJSONObject pulls the JSON object out of a larger LLM text response.
// Markdown code fences are stripped, then the span from the first brace to
// its balanced closing brace is taken; if brace counting fails, the span to
// the last brace in the text is used as a fallback.
func extractJSONObject(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return ""
	}

	braceCount := 0
	lastValidBrace := -1
	inString := false
	escaped := false
	for i := firstBrace; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				lastValidBrace = i
			}
		}
		if lastValidBrace != -1 {
			break
		}
	}

	if lastValidBrace == -1 {
		lastBrace := strings.LastIndex(response, "}")
		if lastBrace == -1 || lastBrace <= firstBrace {
			return ""
		}
		lastValidBrace = lastBrace
	}

	return strings.TrimSpace(response[firstBrace : lastValidBrace+1])
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
