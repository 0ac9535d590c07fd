package travel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aryatravel/arya/internal/app/models"
)

// parseTravelDataResponse pulls hotel and restaurant lists out of an LLM
// response, trying the shapes models actually produce: the requested object,
// a data-wrapped object, and an object using accommodation/dining key names.
func parseTravelDataResponse(responseText string) (models.TravelData, error) {
	if responseText == "" {
		return models.TravelData{}, fmt.Errorf("empty travel data response text")
	}

	cleanedResponse := cleanJSONResponse(responseText)

	// Try to parse as the requested shape
	var data models.TravelData
	if err := json.Unmarshal([]byte(cleanedResponse), &data); err == nil && (len(data.Hotels) > 0 || len(data.Restaurants) > 0) {
		return data, nil
	}

	// Try to parse as wrapper with data field
	var wrapper struct {
		Data models.TravelData `json:"data"`
	}
	if err := json.Unmarshal([]byte(cleanedResponse), &wrapper); err == nil && (len(wrapper.Data.Hotels) > 0 || len(wrapper.Data.Restaurants) > 0) {
		return wrapper.Data, nil
	}

	// Try to parse with alternate key names
	var alt struct {
		Accommodations []models.Place `json:"accommodations"`
		Dining         []models.Place `json:"dining"`
	}
	if err := json.Unmarshal([]byte(cleanedResponse), &alt); err == nil && (len(alt.Accommodations) > 0 || len(alt.Dining) > 0) {
		return models.TravelData{Hotels: alt.Accommodations, Restaurants: alt.Dining}, nil
	}

	return models.TravelData{}, fmt.Errorf("failed to parse travel data response")
}

// cleanJSONResponse strips markdown fences and trims the response to its
// JSON object span by brace counting.
func cleanJSONResponse(response string) string {
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
		return response
	}

	braceCount := 0
	lastValidBrace := -1
	for i := firstBrace; i < len(response); i++ {
		switch response[i] {
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
			return response
		}
		lastValidBrace = lastBrace
	}

	return response[firstBrace : lastValidBrace+1]
}
