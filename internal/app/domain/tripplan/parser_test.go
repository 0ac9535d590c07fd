package tripplan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/models"
)

var testReq = models.ResolvedTripRequest{
	Destination: "Paris",
	Origin:      "Madrid",
	Duration:    "5 days",
	Travelers:   "2 people (couple)",
	Purpose:     "culture",
	Dates:       "1 June",
}

func TestParseItineraryResponseRepairsStructure(t *testing.T) {
	response := `Here is your trip!

` + "```json" + `
{
  "destination": "Paris",
  "itinerary": [
    {"title": "Arrival", "activities": [{"name": "Louvre"}]},
    {"day": 9, "activities": "museum hopping"},
    {"day": 1}
  ],
  "tips": ["Buy a metro pass"]
}
` + "```"

	doc, err := ParseItineraryResponse(response, testReq, 3, zap.NewNop())
	require.NoError(t, err)

	// Positional order is authoritative: day numbers are renumbered to
	// index+1 no matter what the model produced.
	require.Len(t, doc.Itinerary, 3)
	for i, day := range doc.Itinerary {
		assert.Equal(t, i+1, day.Day)
	}

	assert.Equal(t, "Arrival", doc.Itinerary[0].Title)
	assert.Equal(t, "Day 2", doc.Itinerary[1].Title)
	assert.Equal(t, "Day 3", doc.Itinerary[2].Title)

	// A non-array activities value degrades to empty, not an error.
	assert.Equal(t, []models.Activity{{Name: "Louvre"}}, doc.Itinerary[0].Activities)
	assert.Empty(t, doc.Itinerary[1].Activities)
	assert.Empty(t, doc.Itinerary[2].Activities)

	assert.Equal(t, []string{"Buy a metro pass"}, doc.Tips)
}

func TestParseItineraryResponseBackfillsHeaderFromRequest(t *testing.T) {
	response := `{"itinerary": [{"day": 1, "title": "Day 1"}]}`

	doc, err := ParseItineraryResponse(response, testReq, 1, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Paris", doc.Destination)
	assert.Equal(t, "Madrid", doc.Origin)
	assert.Equal(t, "5 days", doc.Duration)
	assert.Equal(t, "2 people (couple)", doc.Travelers)
	assert.Equal(t, "culture", doc.Purpose)
	assert.Equal(t, "1 June", doc.Dates)
	assert.NotNil(t, doc.Tips)
}

func TestParseItineraryResponseKeepsModelHeaderWhenPresent(t *testing.T) {
	response := `{"destination": "Paris, France", "itinerary": [{"day": 1}]}`

	doc, err := ParseItineraryResponse(response, testReq, 1, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Paris, France", doc.Destination)
}

func TestParseItineraryResponseSurroundingProse(t *testing.T) {
	response := `Sure! {"itinerary": [{"day": 1, "title": "Old town"}]} Enjoy the trip.`

	doc, err := ParseItineraryResponse(response, testReq, 1, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Old town", doc.Itinerary[0].Title)
}

func TestParseItineraryResponseAccommodationShapes(t *testing.T) {
	response := `{"itinerary": [
		{"day": 1, "accommodation": "somewhere central", "dining": {"name": "Chez Janou", "rating": 4.6}},
		{"day": 2, "accommodation": 42}
	]}`

	doc, err := ParseItineraryResponse(response, testReq, 2, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "somewhere central", doc.Itinerary[0].Accommodation.Text)
	assert.Nil(t, doc.Itinerary[0].Accommodation.Place)
	require.NotNil(t, doc.Itinerary[0].Dining.Place)
	assert.Equal(t, "Chez Janou", doc.Itinerary[0].Dining.Place.Name)

	// An unexpected shape degrades to an empty placeholder.
	assert.Empty(t, doc.Itinerary[1].Accommodation.Text)
	assert.Nil(t, doc.Itinerary[1].Accommodation.Place)
}

func TestParseItineraryResponseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json at all", "Sorry, I could not generate an itinerary this time."},
		{"unbalanced braces", `{"itinerary": [{"day": 1}`},
		{"invalid json", `{"itinerary": [,]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseItineraryResponse(tt.response, testReq, 3, zap.NewNop())
			assert.ErrorIs(t, err, models.ErrMalformedResponse)
		})
	}
}

func TestParseItineraryResponseEmptyItinerary(t *testing.T) {
	for _, response := range []string{
		`{"destination": "Paris"}`,
		`{"destination": "Paris", "itinerary": []}`,
	} {
		_, err := ParseItineraryResponse(response, testReq, 3, zap.NewNop())
		assert.ErrorIs(t, err, models.ErrEmptyItinerary)
	}
}

func TestParseItineraryResponseAcceptsPartialResult(t *testing.T) {
	days := make([]string, 3)
	for i := range days {
		days[i] = fmt.Sprintf(`{"day": %d}`, i+1)
	}
	response := `{"itinerary": [` + days[0] + "," + days[1] + "," + days[2] + `]}`

	// 3 of 5 requested days is below the partial threshold but still an
	// accepted document.
	doc, err := ParseItineraryResponse(response, testReq, 5, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, doc.Itinerary, 3)
}
