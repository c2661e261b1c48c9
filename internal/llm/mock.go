package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

// MockClient is a configurable text generator for testing.
// Responses are returned in order; the last one repeats once exhausted.
// Errors, when set, are returned for the matching call index instead.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Errors    []error

	// Call tracking for assertions
	Prompts []string
	Options []domain.GenerateOptions
}

func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"Mock reply"}
	}
	return &MockClient{Responses: responses}
}

func (c *MockClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := len(c.Prompts)
	c.Prompts = append(c.Prompts, prompt)
	c.Options = append(c.Options, opts)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if call < len(c.Errors) && c.Errors[call] != nil {
		return "", c.Errors[call]
	}
	if len(c.Responses) == 0 {
		return "", ErrEmptyResponse
	}
	if call >= len(c.Responses) {
		return c.Responses[len(c.Responses)-1], nil
	}
	return c.Responses[call], nil
}

// Calls returns the number of Generate calls so far.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}

// Reset clears all call tracking.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = nil
	c.Options = nil
}
