package llm

import (
	"context"
	"fmt"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"
	"google.golang.org/genai"

	"github.com/aryatravel/arya/internal/pkg/config"
)

// Result is one completed generation, with the token accounting the audit
// log wants.
type Result struct {
	Text             string
	ModelName        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client wraps the Gemini chat client with the model settings from config.
type Client struct {
	ai          *generativeAI.LLMChatClient
	model       string
	temperature float32
}

func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	aiClient, err := generativeAI.NewLLMChatClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI client: %w", err)
	}
	return &Client{
		ai:          aiClient,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Generate runs one prompt through the model and returns the first candidate
// text. An empty candidate is an error; callers never see a blank response.
func (c *Client) Generate(ctx context.Context, prompt string) (Result, error) {
	response, err := c.ai.GenerateResponse(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](c.temperature),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate response: %w", err)
	}

	var txt string
	for _, candidate := range response.Candidates {
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			txt = candidate.Content.Parts[0].Text
			break
		}
	}
	if txt == "" {
		return Result{}, fmt.Errorf("no valid content in AI response")
	}

	result := Result{
		Text:      txt,
		ModelName: c.model,
	}
	if response.UsageMetadata != nil {
		result.PromptTokens = int(response.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(response.UsageMetadata.CandidatesTokenCount)
		result.TotalTokens = int(response.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
