package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Lister handles listing available generation models
type Lister struct {
	provider string
	apiKey   string
	client   *openai.Client
}

// NewLister creates a new model lister for "gemini" or "openai"
func NewLister(provider, apiKey string) *Lister {
	l := &Lister{provider: provider, apiKey: apiKey}
	if provider == "openai" {
		l.client = openai.NewClient(apiKey)
	}
	return l
}

// ListAvailableModels prints the models usable for translation
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return fmt.Errorf("%s API key not found. Set the API key environment variable or configure it in .treetranslate.yaml", l.provider)
	}

	var names []string
	var err error
	switch l.provider {
	case "gemini":
		names, err = l.geminiModels(ctx)
	case "openai":
		names, err = l.openAIModels(ctx)
	default:
		return fmt.Errorf("unknown provider: %s", l.provider)
	}
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	sort.Strings(names)

	fmt.Fprintf(w, "Available %s text models:\n", l.provider)
	if len(names) == 0 {
		fmt.Fprintln(w, "  No text models found")
		return nil
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}

	return nil
}

func (l *Lister) openAIModels(ctx context.Context) ([]string, error) {
	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, model := range list.Models {
		if isOpenAIChatModel(model.ID) {
			names = append(names, model.ID)
		}
	}
	return names, nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		if isGeminiTextModel(model.Name) {
			names = append(names, strings.TrimPrefix(model.Name, "models/"))
		}
	}
	return names, nil
}

func isOpenAIChatModel(id string) bool {
	if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
		strings.Contains(id, "realtime") || strings.Contains(id, "transcribe") {
		return false
	}
	return strings.HasPrefix(id, "gpt-") || strings.HasPrefix(id, "o1") ||
		strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4")
}

func isGeminiTextModel(name string) bool {
	name = strings.TrimPrefix(name, "models/")
	if !strings.HasPrefix(name, "gemini") {
		return false
	}
	return !strings.Contains(name, "embedding") && !strings.Contains(name, "image") &&
		!strings.Contains(name, "tts") && !strings.Contains(name, "live")
}
