package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCerebras} {
		_, err := NewClient(ctx, provider, "", "")
		assert.Error(t, err, "%s without key", provider)
	}

	c, err := NewClient(ctx, ProviderMock, "", "")
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	c, err = NewClient(ctx, ProviderOpenAI, "sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, c.(*OpenAIClient).model)

	c, err = NewClient(ctx, ProviderAnthropic, "sk-ant", "claude-custom")
	require.NoError(t, err)
	assert.Equal(t, "claude-custom", c.(*AnthropicClient).model)

	_, err = NewClient(ctx, "palm", "k", "")
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestMockClient(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockClient("first", "second")
	m.Errors = []error{nil, boom}
	ctx := context.Background()

	got, err := m.Generate(ctx, "p1", domain.GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	_, err = m.Generate(ctx, "p2", domain.GenerateOptions{})
	assert.ErrorIs(t, err, boom)

	got, err = m.Generate(ctx, "p3", domain.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "second", got, "last response repeats")

	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, []string{"p1", "p2", "p3"}, m.Prompts)
	assert.InDelta(t, 0.7, float64(m.Options[0].Temperature), 1e-6)

	m.Reset()
	assert.Equal(t, 0, m.Calls())
}

func TestCerebrasGenerate(t *testing.T) {
	var got cerebrasRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  नमस्ते!  "}}]}`))
	}))
	defer srv.Close()

	c := NewCerebrasClient("key-123", "")
	c.url = srv.URL

	text, err := c.Generate(context.Background(), "hello", domain.GenerateOptions{Temperature: 0.5, MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "नमस्ते!", text)
	assert.Equal(t, cerebrasModel, got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestCerebrasErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"bad status", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, nil},
		{"api error", http.StatusOK, `{"error":{"message":"bad model"}}`, nil},
		{"no choices", http.StatusOK, `{"choices":[]}`, nil},
		{"empty text", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewCerebrasClient("k", "")
			c.url = srv.URL
			_, err := c.Generate(context.Background(), "p", domain.GenerateOptions{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBuildResponsePrompt(t *testing.T) {
	prompt, err := BuildResponsePrompt(ResponsePrompt{
		Locale: "hi",
		Intent: domain.IntentEligibilityCheck,
		Known:  []string{"उम्र: 45"},
		Needed: []string{"सालाना आय"},
		Outputs: []ToolOutput{
			{Tool: "eligibility_engine", Result: map[string]any{"evaluated": 10}},
		},
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "नमस्ते"},
			{Role: domain.RoleAssistant, Content: "नमस्ते! बताइए"},
		},
		Utterance: "क्या मुझे पेंशन मिलेगी",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "इरादा: eligibility-check")
	assert.Contains(t, prompt, "उम्र: 45")
	assert.Contains(t, prompt, "अभी भी चाहिए: सालाना आय")
	assert.Contains(t, prompt, `[{"tool":"eligibility_engine","result":{"evaluated":10}}]`)
	assert.Contains(t, prompt, "user: नमस्ते\nassistant: नमस्ते! बताइए")
	assert.Contains(t, prompt, `"क्या मुझे पेंशन मिलेगी"`)

	en, err := BuildResponsePrompt(ResponsePrompt{Locale: "en", Intent: domain.IntentSchemeInquiry})
	require.NoError(t, err)
	assert.Contains(t, en, "Already provided by the user: nothing yet")
	assert.Contains(t, en, "Tool results:\n[]")
}
