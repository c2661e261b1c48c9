package domain

import "context"

type ToolStatus string

const (
	ToolSuccess       ToolStatus = "success"
	ToolPartial       ToolStatus = "partial"
	ToolNeedsInfo     ToolStatus = "needs_info"
	ToolError         ToolStatus = "error"
	ToolNotApplicable ToolStatus = "not_applicable"
)

// ToolResult is the uniform output contract of every tool.
type ToolResult struct {
	Status     ToolStatus     `json:"status"`
	Data       map[string]any `json:"data,omitempty"`
	Message    string         `json:"message,omitempty"`
	Missing    []string       `json:"missing,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Usable reports whether the result carries data the reply can rely on.
func (r ToolResult) Usable() bool {
	return r.Status == ToolSuccess || r.Status == ToolPartial
}

type ToolSchema struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
	Optional    []string `json:"optional,omitempty"`
}

// Tool is a pure function of its inputs and its injected read-only data.
type Tool interface {
	Schema() ToolSchema
	Execute(ctx context.Context, inputs map[string]any) ToolResult
}

// ExecutionResult wraps one tool call made by the Executor.
type ExecutionResult struct {
	Tool    string     `json:"tool"`
	Success bool       `json:"success"`
	Result  ToolResult `json:"result"`
	Err     string     `json:"error,omitempty"`
	Missing []string   `json:"missing,omitempty"`
}
