package llmlogging

import (
	"context"

	"github.com/google/uuid"

	"github.com/aryatravel/arya/internal/app/models"
)

// Repository is the minimal persistence interface needed for LLM audit
// logging.
type Repository interface {
	SaveInteraction(ctx context.Context, interaction models.LlmInteraction) (uuid.UUID, error)
}

// LoggingConfig describes one LLM call for the audit trail.
type LoggingConfig struct {
	ChatID uuid.UUID
	Intent string // "conversation", "itinerary", "places"
	Prompt string

	ModelName string
	Provider  string // defaults to "google"
}

// LLMResponse carries the outcome of an LLM call.
type LLMResponse struct {
	ResponseText     string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	StatusCode       int // 200 for success, error codes for failures
	ErrorMessage     string
}
