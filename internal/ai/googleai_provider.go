package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultGeminiModel is used when no model is configured for the googleai provider.
const DefaultGeminiModel = "gemini-2.5-flash"

// GoogleAIProvider calls Gemini through langchaingo.
type GoogleAIProvider struct {
	client      llms.Model
	temperature float64
}

// NewGoogleAIProvider creates a Gemini client for model.
func NewGoogleAIProvider(ctx context.Context, apiKey, model string, temperature float64) (*GoogleAIProvider, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GoogleAIProvider{client: client, temperature: temperature}, nil
}

// Complete sends prompt as a single human message.
func (p *GoogleAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, p.client, prompt, llms.WithTemperature(p.temperature))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp, nil
}
