package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiRemote implements Remote with the Google Gemini API
type GeminiRemote struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiRemote creates a Gemini remote. A missing API key is not an
// error here; IsAvailable reports it before a run starts.
func NewGeminiRemote(ctx context.Context, apiKey, model string) (*GeminiRemote, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	g := &GeminiRemote{apiKey: apiKey, model: model}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client

	return g, nil
}

// Generate sends the prompt to Gemini
func (g *GeminiRemote) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", NewFatalError(fmt.Errorf("gemini API key not found"))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}

	return resp.Text(), nil
}

// Name returns the provider name
func (g *GeminiRemote) Name() string {
	return "gemini"
}

// Model returns the model identifier
func (g *GeminiRemote) Model() string {
	return g.model
}

// IsAvailable checks if the remote is properly configured
func (g *GeminiRemote) IsAvailable() error {
	if g.apiKey == "" {
		return fmt.Errorf("gemini API key not found, set GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	if g.model == "" {
		return fmt.Errorf("gemini model not set")
	}
	return nil
}

// Client returns the underlying SDK client, nil without an API key
func (g *GeminiRemote) Client() *genai.Client {
	return g.client
}

// classifyGeminiError tags rate limits as transient. Everything else is
// fatal, except errors caused by ctx being done.
func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isGeminiRateLimit(apiErr) {
		return NewTransientError(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && isGeminiRateLimit(*apiErrPtr) {
		return NewTransientError(err)
	}

	return NewFatalError(fmt.Errorf("gemini API error: %w", err))
}

func isGeminiRateLimit(apiErr genai.APIError) bool {
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
}
