package travel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/llm"
	"github.com/aryatravel/arya/internal/app/models"
	"github.com/aryatravel/arya/internal/pkg/llmlogging"
)

// Generator produces one text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (llm.Result, error)
}

// Provider resolves hotel and restaurant data for a destination.
type Provider interface {
	GetTravelData(ctx context.Context, chatID uuid.UUID, destination string) (models.TravelData, error)
}

// Service is the LLM-backed places provider. Results are cached per
// destination so repeated generations for the same city skip the model call.
type Service struct {
	logger    *zap.Logger
	generator Generator
	cache     *cache.Cache
	llmLogger *llmlogging.Logger
}

func NewService(generator Generator, llmLogger *llmlogging.Logger, logger *zap.Logger) *Service {
	return &Service{
		logger:    logger,
		generator: generator,
		cache:     cache.New(30*time.Minute, 10*time.Minute),
		llmLogger: llmLogger,
	}
}

// GetTravelData returns hotels and restaurants for a destination. A failure
// here is advisory; itinerary generation proceeds without enrichment.
func (s *Service) GetTravelData(ctx context.Context, chatID uuid.UUID, destination string) (models.TravelData, error) {
	cacheKey := travelDataCacheKey(destination)
	if cached, found := s.cache.Get(cacheKey); found {
		if data, ok := cached.(models.TravelData); ok {
			s.logger.Debug("Travel data cache hit", zap.String("destination", destination))
			return data, nil
		}
	}

	prompt := buildTravelDataPrompt(destination)

	startTime := time.Now()
	result, err := s.generator.Generate(ctx, prompt)
	latencyMs := time.Since(startTime).Milliseconds()

	if err != nil {
		s.logInteraction(ctx, chatID, prompt, llm.Result{}, err.Error(), latencyMs)
		return models.TravelData{}, fmt.Errorf("failed to fetch travel data for %s: %w", destination, err)
	}

	data, err := parseTravelDataResponse(result.Text)
	if err != nil {
		s.logInteraction(ctx, chatID, prompt, result, err.Error(), latencyMs)
		return models.TravelData{}, fmt.Errorf("failed to parse travel data for %s: %w", destination, err)
	}

	s.logInteraction(ctx, chatID, prompt, result, "", latencyMs)
	s.cache.Set(cacheKey, data, cache.DefaultExpiration)

	s.logger.Info("Travel data fetched",
		zap.String("destination", destination),
		zap.Int("hotels", len(data.Hotels)),
		zap.Int("restaurants", len(data.Restaurants)))
	return data, nil
}

func (s *Service) logInteraction(ctx context.Context, chatID uuid.UUID, prompt string, result llm.Result, errorMessage string, latencyMs int64) {
	if s.llmLogger == nil {
		return
	}
	statusCode := 200
	if errorMessage != "" {
		statusCode = 500
	}
	s.llmLogger.LogInteractionAsync(ctx, llmlogging.LoggingConfig{
		ChatID:    chatID,
		Intent:    "places",
		Prompt:    prompt,
		ModelName: result.ModelName,
		Provider:  "google",
	}, llmlogging.LLMResponse{
		ResponseText:     result.Text,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		StatusCode:       statusCode,
		ErrorMessage:     errorMessage,
	}, latencyMs)
}

func travelDataCacheKey(destination string) string {
	return "traveldata:" + strings.ToLower(strings.TrimSpace(destination))
}

func buildTravelDataPrompt(destination string) string {
	return fmt.Sprintf(`You are a travel data service. List real, well-known hotels and restaurants in %s.

Return ONLY valid JSON in exactly this format:
{
  "hotels": [
    {"name": "Hotel Name", "rating": 4.5, "address": "Street, City", "googleMapsUrl": "https://maps.google.com/?q=Hotel+Name"}
  ],
  "restaurants": [
    {"name": "Restaurant Name", "rating": 4.5, "address": "Street, City", "googleMapsUrl": "https://maps.google.com/?q=Restaurant+Name"}
  ]
}

Include 4 hotels and 6 restaurants. Do not invent place names.`, destination)
}
