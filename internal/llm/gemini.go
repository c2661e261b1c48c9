package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	temp := opts.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
