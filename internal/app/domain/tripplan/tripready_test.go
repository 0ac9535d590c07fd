package tripplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasTripReadyMarker(t *testing.T) {
	assert.True(t, HasTripReadyMarker("Great, we have everything!\nTRIP_READY\nDestination: Paris"))
	assert.False(t, HasTripReadyMarker("Where would you like to go?"))
}

func TestParseTripReady(t *testing.T) {
	response := `Perfect, I have everything I need!

TRIP_READY
Destination: Paris
Origin: Madrid
Duration: 5 days
Travelers: 2 people (couple)
Purpose: culture
Dates: 1 June`

	got := ParseTripReady(response)

	assert.Equal(t, map[string]string{
		"destination": "Paris",
		"origin":      "Madrid",
		"duration":    "5 days",
		"travelers":   "2 people (couple)",
		"purpose":     "culture",
		"dates":       "1 June",
	}, got)
}

func TestParseTripReadyNormalizesKeys(t *testing.T) {
	got := ParseTripReady("  Number Of Days : 5\nTrip-Focus: food")

	assert.Equal(t, "5", got["numberofdays"])
	assert.Equal(t, "food", got["tripfocus"])
}

func TestParseTripReadySkipsJunkLines(t *testing.T) {
	response := `TRIP_READY
here is your summary
Destination:
: Paris
Status: TRIP_READY confirmed
Duration: 5 days`

	got := ParseTripReady(response)

	// Lines without a colon, with an empty key or value, or whose value
	// contains the marker itself are all dropped.
	assert.Equal(t, map[string]string{"duration": "5 days"}, got)
}

func TestParseTripReadyDuplicateKeysLastWins(t *testing.T) {
	got := ParseTripReady("Destination: Paris\nDestination: Rome")

	assert.Equal(t, "Rome", got["destination"])
}

func TestParseTripReadyValueKeepsInternalColons(t *testing.T) {
	got := ParseTripReady("Dates: 1 June, arrival: morning")

	assert.Equal(t, "1 June, arrival: morning", got["dates"])
}
