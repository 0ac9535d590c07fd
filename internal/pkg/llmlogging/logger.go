package llmlogging

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aryatravel/arya/internal/app/models"
)

// Logger persists LLM interaction records, normally asynchronously so a slow
// insert never sits on the request path.
type Logger struct {
	logger *zap.Logger
	repo   Repository
}

func NewLogger(logger *zap.Logger, repo Repository) *Logger {
	return &Logger{
		logger: logger,
		repo:   repo,
	}
}

// Pricing for Gemini models (as of 2024)
// Source: https://ai.google.dev/pricing
var geminiPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	"gemini-1.5-pro":   {InputPer1M: 3.50, OutputPer1M: 10.50},
	"gemini-1.5-flash": {InputPer1M: 0.075, OutputPer1M: 0.30},
	"gemini-2.0-flash": {InputPer1M: 0.10, OutputPer1M: 0.40},
	"gemini-pro":       {InputPer1M: 0.50, OutputPer1M: 1.50},
}

// CalculateCost estimates the cost in USD for an LLM interaction. Unknown
// models cost 0.
func CalculateCost(modelName string, promptTokens, completionTokens int) float64 {
	normalizedModel := strings.ToLower(modelName)
	for key, pricing := range geminiPricing {
		if strings.Contains(normalizedModel, key) {
			inputCost := (float64(promptTokens) / 1_000_000) * pricing.InputPer1M
			outputCost := (float64(completionTokens) / 1_000_000) * pricing.OutputPer1M
			return inputCost + outputCost
		}
	}
	return 0
}

// LogInteractionAsync records an LLM interaction without blocking the caller.
// The async context survives request cancellation.
func (l *Logger) LogInteractionAsync(ctx context.Context, config LoggingConfig, response LLMResponse, latencyMs int64) {
	if l.repo == nil {
		return
	}
	asyncCtx := context.WithoutCancel(ctx)

	go func() {
		interaction := buildInteraction(config, response, latencyMs)
		if _, err := l.repo.SaveInteraction(asyncCtx, interaction); err != nil {
			l.logger.Error("Failed to log LLM interaction",
				zap.String("intent", config.Intent),
				zap.String("chat_id", config.ChatID.String()),
				zap.Error(err))
		}
	}()
}

func buildInteraction(config LoggingConfig, response LLMResponse, latencyMs int64) models.LlmInteraction {
	return models.LlmInteraction{
		ChatID:           config.ChatID,
		Intent:           config.Intent,
		Prompt:           config.Prompt,
		ResponseText:     response.ResponseText,
		ModelUsed:        config.ModelName,
		PromptTokens:     response.PromptTokens,
		CompletionTokens: response.CompletionTokens,
		TotalTokens:      response.TotalTokens,
		LatencyMs:        latencyMs,
		CostUSD:          CalculateCost(config.ModelName, response.PromptTokens, response.CompletionTokens),
		Timestamp:        time.Now().UTC(),
	}
}
