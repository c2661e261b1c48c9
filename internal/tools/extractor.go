package tools

import (
	"context"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
)

// Extractor exposes the fact extractor through the tool contract.
type Extractor struct {
	extractor nlu.FactExtractor
}

func NewExtractor(e nlu.FactExtractor) *Extractor {
	return &Extractor{extractor: e}
}

func (t *Extractor) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        UserDataExtractor,
		Description: "Extracts profile facts from free text",
		Required:    []string{"text"},
	}
}

func (t *Extractor) Execute(ctx context.Context, inputs map[string]any) domain.ToolResult {
	text, _ := stringInput(inputs, "text")
	facts := t.extractor.Extract(text)
	if len(facts) == 0 {
		return domain.ToolResult{
			Status:     domain.ToolPartial,
			Data:       map[string]any{"facts": domain.Facts{}},
			Message:    "no facts found",
			Confidence: 0.5,
		}
	}
	return domain.ToolResult{
		Status:     domain.ToolSuccess,
		Data:       map[string]any{"facts": facts},
		Confidence: 0.85,
	}
}
