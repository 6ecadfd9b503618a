package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	systemPrompt = "You rewrite short passages of Indian government job notices for tone. You never change facts or numbers."

	maxReplyTokens   = 1024
	maxResponseBytes = 1 << 20
)

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint
// (OpenAI, Groq, a local server).
type OpenAIProvider struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIProvider creates a provider for the API rooted at baseURL.
func NewOpenAIProvider(baseURL, apiKey, model string, temperature float64, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		endpoint:    strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  httpClient,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *APIError    `json:"error,omitempty"`
}

// APIError is an error reported by the completion endpoint, either as a
// non-200 status or as an error object in the body.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("llm error (%s): %s", e.Type, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("llm returned HTTP %d: %s", e.StatusCode, e.Message)
	default:
		return "llm error: " + e.Message
	}
}

// Complete sends prompt as the user turn and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   maxReplyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}
	return decodeReply(resp.StatusCode, raw)
}

func decodeReply(status int, raw []byte) (string, error) {
	if status != http.StatusOK {
		return "", &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("parse llm response: %w", err)
	}
	if cr.Error != nil {
		return "", cr.Error
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
