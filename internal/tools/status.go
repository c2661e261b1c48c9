package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

// Status queries the external application-status service.
type Status struct {
	source domain.ApplicationStatusSource
}

func NewStatus(source domain.ApplicationStatusSource) *Status {
	return &Status{source: source}
}

func (t *Status) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        ApplicationStatus,
		Description: "Looks up an application by its reference id",
		Required:    []string{"reference_id"},
	}
}

func (t *Status) Execute(ctx context.Context, inputs map[string]any) domain.ToolResult {
	ref, ok := stringInput(inputs, "reference_id")
	if !ok {
		return domain.ToolResult{
			Status:  domain.ToolNeedsInfo,
			Message: "reference_id is required",
			Missing: []string{"reference_id"},
		}
	}
	ref = strings.ToUpper(ref)

	app, err := t.source.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ToolResult{
				Status:     domain.ToolPartial,
				Data:       map[string]any{"found": false, "reference_id": ref},
				Message:    fmt.Sprintf("no application with reference %s", ref),
				Confidence: 0.8,
			}
		}
		return errorResult(fmt.Sprintf("status lookup failed: %v", err))
	}

	return domain.ToolResult{
		Status:     domain.ToolSuccess,
		Data:       map[string]any{"found": true, "application": app},
		Message:    fmt.Sprintf("application %s is %s", ref, app.Status),
		Confidence: 0.95,
	}
}
