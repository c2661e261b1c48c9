package tools

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
)

const searchLimit = 5

// Retrieval looks catalog entries up by id, free-text query or catalog
// category, falling back to the full listing. The catalog category input is
// scheme_category; the user's social category fact is not a filter.
type Retrieval struct {
	catalog *catalog.Catalog
}

func NewRetrieval(c *catalog.Catalog) *Retrieval {
	return &Retrieval{catalog: c}
}

func (t *Retrieval) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        SchemeRetrieval,
		Description: "Finds catalog entries by id, search text or category",
		Optional:    []string{"scheme_id", "query", "scheme_category"},
	}
}

func (t *Retrieval) Execute(ctx context.Context, inputs map[string]any) domain.ToolResult {
	if id, ok := stringInput(inputs, "scheme_id"); ok {
		if e, found := t.catalog.ByID(id); found {
			return retrievalResult("id", []domain.CatalogEntry{e}, 1.0)
		}
	}

	if q, ok := stringInput(inputs, "query"); ok {
		hits := t.catalog.Search(q, searchLimit)
		if len(hits) > 0 {
			entries := make([]domain.CatalogEntry, len(hits))
			for i, h := range hits {
				entries[i] = h.Entry
			}
			return retrievalResult("search", entries, 0.9)
		}
	}

	if cat, ok := stringInput(inputs, "scheme_category"); ok {
		if entries := t.catalog.ByCategory(cat); len(entries) > 0 {
			return retrievalResult("category", entries, 0.95)
		}
	}

	return retrievalResult("all", t.catalog.All(), 1.0)
}

func retrievalResult(mode string, entries []domain.CatalogEntry, confidence float64) domain.ToolResult {
	return domain.ToolResult{
		Status: domain.ToolSuccess,
		Data: map[string]any{
			"mode":    mode,
			"schemes": entries,
			"count":   len(entries),
		},
		Message:    fmt.Sprintf("%d schemes found by %s", len(entries), mode),
		Confidence: confidence,
	}
}
