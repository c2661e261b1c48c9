package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

var ErrEmptyResponse = errors.New("llm returned empty response")

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

// NewClient creates a text generator based on the provider name. An empty
// model selects the provider's default.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(ctx context.Context, provider, apiKey, model string) (domain.TextGenerator, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey, model), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey, model), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		client, err := NewGeminiClient(ctx, apiKey, model)
		if err != nil {
			return nil, err
		}
		return client, nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey, model), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, cerebras, mock)", provider)
	}
}
