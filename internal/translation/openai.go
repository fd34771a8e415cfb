package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIRemote implements Remote with OpenAI chat completions
type OpenAIRemote struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIRemote creates a new OpenAI remote
func NewOpenAIRemote(apiKey, model string) *OpenAIRemote {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIRemote{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(apiKey),
	}
}

// Generate sends the prompt as a single user message
func (o *OpenAIRemote) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", NewFatalError(fmt.Errorf("openai API key not found"))
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", NewFatalError(fmt.Errorf("no translation returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Name returns the provider name
func (o *OpenAIRemote) Name() string {
	return "openai"
}

// IsAvailable checks if the remote is properly configured
func (o *OpenAIRemote) IsAvailable() error {
	if o.apiKey == "" {
		return fmt.Errorf("openai API key not found, set OPENAI_API_KEY")
	}
	return nil
}

func classifyOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return NewTransientError(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return NewTransientError(err)
	}

	return NewFatalError(fmt.Errorf("openai API error: %w", err))
}
