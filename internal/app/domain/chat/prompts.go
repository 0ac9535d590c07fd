package chat

import (
	"fmt"
	"strings"

	"github.com/aryatravel/arya/internal/app/models"
)

// buildConversationPrompt assembles the prompt for one conversational turn.
// The model is instructed to keep asking for missing trip details and to
// emit a TRIP_READY block once it has enough to plan with.
func buildConversationPrompt(history []models.ChatMessage, slots models.TripSlots, userMessage string) string {
	var b strings.Builder

	b.WriteString(`You are ARYA, a friendly travel planning assistant. Your job is to collect the details needed to plan a trip: destination, origin, travel dates, duration, number of travelers, and trip focus (culture, gastronomy, exploring, adventure).

Rules:
- Be warm and conversational, one or two short paragraphs per reply.
- Ask for at most one or two missing details at a time.
- Never re-ask for a detail you already know.
- Users may write in English or Spanish; reply in the user's language.
- Once you know at least the destination and the duration, stop asking and reply with a line containing exactly TRIP_READY: followed by one "Key: value" line per known detail, for example:

TRIP_READY:
Destination: Paris
Origin: Madrid
Duration: 5 days
Travelers: 2 people (couple)
Purpose: culture
Dates: 1 June

`)

	if known := knownDetails(slots); known != "" {
		b.WriteString("Details already collected:\n")
		b.WriteString(known)
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			b.WriteString(msg.Role)
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("user: ")
	b.WriteString(userMessage)
	b.WriteString("\nassistant:")
	return b.String()
}

func knownDetails(slots models.TripSlots) string {
	var b strings.Builder
	write := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	write("Destination", slots.Destination)
	write("Origin", slots.Origin)
	write("Duration", slots.Duration)
	write("Travelers", slots.Travelers)
	write("Purpose", slots.Purpose)
	write("Dates", slots.Dates)
	return b.String()
}

// buildItineraryPrompt asks for the structured day-by-day itinerary. The
// requested JSON shape matches what the parser repairs into an
// ItineraryDocument.
func buildItineraryPrompt(req models.ResolvedTripRequest, days int) string {
	return fmt.Sprintf(`Create a detailed %s itinerary for %s.
Traveling from: %s
Travelers: %s
Focus: %s
Dates: %s

Provide a day-by-day breakdown covering exactly %d days, with specific activities, restaurants, and accommodations.
Format it as JSON with this structure:
{
  "destination": "%s",
  "origin": "%s",
  "duration": "%s",
  "travelers": "%s",
  "purpose": "%s",
  "dates": "%s",
  "itinerary": [
    {
      "day": 1,
      "title": "Arrival & First Impressions",
      "activities": [
        {"name": "Activity Name", "description": "Description"}
      ],
      "accommodation": "Hotel name and details",
      "dining": "Restaurant recommendations"
    }
  ],
  "tips": ["tip 1", "tip 2"]
}`,
		req.Duration, req.Destination, req.Origin, req.Travelers, req.Purpose, req.Dates, days,
		req.Destination, req.Origin, req.Duration, req.Travelers, req.Purpose, req.Dates)
}

// confirmationMessage is shown when the resolved request carries real values
// for destination and duration.
func confirmationMessage(req models.ResolvedTripRequest) string {
	return fmt.Sprintf("Perfect! I've got all the details. Let me create your %s trip to %s! 🎉", req.Duration, req.Destination)
}

// readyMessage announces the finished itinerary.
const readyMessage = "✨ Your personalized itinerary is ready!"

// failureMessage is shown when generation fails; collected details survive
// so the user can just try again.
const failureMessage = "❌ Sorry, I couldn't put your itinerary together this time. All your trip details are saved, just ask me to try again."
