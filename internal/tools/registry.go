// Package tools implements the pure-function tools the executor calls
// and the registry that dispatches to them.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

const (
	EligibilityEngine = "eligibility_engine"
	SchemeRetrieval   = "scheme_retrieval"
	DocumentChecker   = "document_checker"
	ApplicationStatus = "application_status"
	UserDataExtractor = "user_data_extractor"
)

// Registry maps tool names to implementations. It is built once and
// injected; it is never global.
type Registry struct {
	tools map[string]domain.Tool
}

func NewRegistry(tools ...domain.Tool) *Registry {
	r := &Registry{tools: make(map[string]domain.Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t domain.Tool) {
	r.tools[t.Schema().Name] = t
}

func (r *Registry) Get(name string) (domain.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Schemas lists the registered tools sorted by name.
func (r *Registry) Schemas() []domain.ToolSchema {
	out := make([]domain.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Schema())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute runs the named tool. Unknown names and missing required inputs
// are reported as results, never as Go errors; a panicking tool becomes
// an error result.
func (r *Registry) Execute(ctx context.Context, name string, inputs map[string]any) (res domain.ToolResult) {
	t, ok := r.tools[name]
	if !ok {
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	var missing []string
	for _, in := range t.Schema().Required {
		if isEmpty(inputs[in]) {
			missing = append(missing, in)
		}
	}
	if len(missing) > 0 {
		return domain.ToolResult{
			Status:     domain.ToolNeedsInfo,
			Message:    fmt.Sprintf("%s requires: %v", name, missing),
			Missing:    missing,
			Confidence: 0,
		}
	}

	defer func() {
		if p := recover(); p != nil {
			res = errorResult(fmt.Sprintf("%s panicked: %v", name, p))
		}
	}()

	return t.Execute(ctx, inputs)
}

func errorResult(msg string) domain.ToolResult {
	return domain.ToolResult{Status: domain.ToolError, Message: msg}
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	default:
		return false
	}
}
