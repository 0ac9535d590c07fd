package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TripSlots accumulates trip parameters extracted across a conversation.
// An empty string means the slot has not been filled yet. Slots are only
// filled forward: once set, a value is never overwritten for the life of
// the conversation.
type TripSlots struct {
	Destination string `json:"destination,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Travelers   string `json:"travelers,omitempty"`
	Dates       string `json:"dates,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
}

// ResolvedTripRequest is the fully-defaulted record handed to itinerary
// generation. Every field is guaranteed non-empty.
type ResolvedTripRequest struct {
	Destination string `json:"destination"`
	Origin      string `json:"origin"`
	Duration    string `json:"duration"`
	Travelers   string `json:"travelers"`
	Purpose     string `json:"purpose"`
	Dates       string `json:"dates"`
}

// Place is a hotel or restaurant record supplied by the places provider.
type Place struct {
	Name          string   `json:"name"`
	Rating        float64  `json:"rating,omitempty"`
	Address       string   `json:"address,omitempty"`
	Images        []string `json:"images,omitempty"`
	GoogleMapsURL string   `json:"googleMapsUrl,omitempty"`
	PlaceID       string   `json:"place_id,omitempty"`
}

// TravelData bundles the real hotel and restaurant records available for a
// destination, used by the itinerary enricher.
type TravelData struct {
	Hotels      []Place `json:"hotels,omitempty"`
	Restaurants []Place `json:"restaurants,omitempty"`
}

// PlaceOrText holds a day's accommodation or dining entry, which the LLM may
// produce either as free text ("Hotel near the old town") or as a structured
// place object. Exactly one of Text and Place is meaningful.
type PlaceOrText struct {
	Text  string
	Place *Place
}

// Name returns the structured place name, or "" for free-text entries.
// Free text never counts as a named place for enrichment purposes.
func (p PlaceOrText) Name() string {
	if p.Place != nil {
		return p.Place.Name
	}
	return ""
}

func (p PlaceOrText) MarshalJSON() ([]byte, error) {
	if p.Place != nil {
		return json.Marshal(p.Place)
	}
	return json.Marshal(p.Text)
}

func (p *PlaceOrText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		p.Place = nil
		return nil
	}
	var place Place
	if err := json.Unmarshal(data, &place); err == nil {
		p.Place = &place
		p.Text = ""
		return nil
	}
	// Unexpected shape (number, array). Treat as an empty placeholder
	// rather than failing the whole document.
	p.Text = ""
	p.Place = nil
	return nil
}

// Activity is a single item inside a day's plan.
type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Time        string `json:"time,omitempty"`
}

// DayPlan describes one day of a generated itinerary. After repair, Day is
// 1-based, sequential and gap-free, and Title is never empty.
type DayPlan struct {
	Day           int         `json:"day"`
	Title         string      `json:"title"`
	Date          string      `json:"date,omitempty"`
	Activities    []Activity  `json:"activities"`
	Accommodation PlaceOrText `json:"accommodation"`
	Dining        PlaceOrText `json:"dining"`
}

// ItineraryDocument is the generated trip artifact. It is created once per
// successful generation and persists for the remainder of the session.
type ItineraryDocument struct {
	Destination string    `json:"destination"`
	Origin      string    `json:"origin"`
	Duration    string    `json:"duration"`
	Travelers   string    `json:"travelers"`
	Purpose     string    `json:"purpose"`
	Dates       string    `json:"dates"`
	Hotels      []Place   `json:"hotels,omitempty"`
	Restaurants []Place   `json:"restaurants,omitempty"`
	Itinerary   []DayPlan `json:"itinerary"`
	Tips        []string  `json:"tips"`
}

// ChatMessage is one turn of a conversation, persisted per chat.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is a stored conversation with its message history.
type Chat struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SavedItinerary is a persisted itinerary document keyed by the chat that
// produced it.
type SavedItinerary struct {
	ID        uuid.UUID         `json:"id"`
	ChatID    uuid.UUID         `json:"chat_id"`
	Document  ItineraryDocument `json:"document"`
	CreatedAt time.Time         `json:"created_at"`
}

// LlmInteraction is the audit record for one LLM call.
type LlmInteraction struct {
	ID               uuid.UUID `json:"id"`
	ChatID           uuid.UUID `json:"chat_id"`
	Intent           string    `json:"intent"`
	Prompt           string    `json:"prompt"`
	ResponseText     string    `json:"response"`
	ModelUsed        string    `json:"model_name"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LatencyMs        int64     `json:"latency_ms"`
	CostUSD          float64   `json:"cost_usd"`
	Timestamp        time.Time `json:"timestamp"`
}
