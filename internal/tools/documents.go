package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
)

var documentDescriptions = map[string]domain.LocalizedText{
	"aadhaar":                {"hi": "आधार कार्ड", "en": "Aadhaar Card"},
	"income_certificate":     {"hi": "आय प्रमाण पत्र", "en": "Income Certificate"},
	"bpl_card":               {"hi": "बीपीएल कार्ड", "en": "BPL Certificate"},
	"age_proof":              {"hi": "आयु प्रमाण पत्र", "en": "Age Proof"},
	"bank_account":           {"hi": "बैंक खाता पासबुक", "en": "Bank Account"},
	"land_records":           {"hi": "भूमि के कागज़ात", "en": "Land Records"},
	"disability_certificate": {"hi": "दिव्यांगता प्रमाण पत्र", "en": "Disability Certificate"},
	"death_certificate":      {"hi": "पति का मृत्यु प्रमाण पत्र", "en": "Death Certificate of Husband"},
	"caste_certificate":      {"hi": "जाति प्रमाण पत्र", "en": "Caste Certificate"},
	"ration_card":            {"hi": "राशन कार्ड", "en": "Ration Card"},
	"residence_proof":        {"hi": "निवास प्रमाण पत्र", "en": "Residence Proof"},
}

type RequiredDocument struct {
	ID          string               `json:"id"`
	Description domain.LocalizedText `json:"description"`
	Available   bool                 `json:"available"`
}

// Documents lists what an entry requires and which of those the user
// already has.
type Documents struct {
	catalog *catalog.Catalog
}

func NewDocuments(c *catalog.Catalog) *Documents {
	return &Documents{catalog: c}
}

func (t *Documents) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        DocumentChecker,
		Description: "Lists required documents for a catalog entry with availability",
		Required:    []string{"scheme_id"},
		Optional:    []string{"available_documents"},
	}
}

func (t *Documents) Execute(ctx context.Context, inputs map[string]any) domain.ToolResult {
	id, ok := stringInput(inputs, "scheme_id")
	if !ok {
		return domain.ToolResult{
			Status:  domain.ToolNeedsInfo,
			Message: "scheme_id is required",
			Missing: []string{"scheme_id"},
		}
	}

	entry, found := t.catalog.ByID(id)
	if !found {
		return errorResult(fmt.Sprintf("unknown scheme: %s", id))
	}

	have := make(map[string]struct{})
	for _, d := range stringsInput(inputs, "available_documents") {
		have[strings.TrimSpace(d)] = struct{}{}
	}

	docs := make([]RequiredDocument, 0, len(entry.Documents))
	missing := 0
	for _, d := range entry.Documents {
		_, available := have[d]
		if !available {
			missing++
		}
		desc, known := documentDescriptions[d]
		if !known {
			desc = domain.LocalizedText{"hi": d, "en": d}
		}
		docs = append(docs, RequiredDocument{ID: d, Description: desc, Available: available})
	}

	return domain.ToolResult{
		Status: domain.ToolSuccess,
		Data: map[string]any{
			"scheme_id":       entry.ID,
			"scheme_name":     entry.Name,
			"documents":       docs,
			"missing_count":   missing,
			"total_required":  len(entry.Documents),
			"application_url": entry.ApplicationURL,
		},
		Message:    fmt.Sprintf("%d documents required, %d missing", len(entry.Documents), missing),
		Confidence: 1.0,
	}
}

// DocumentName returns the localized display name of a document id.
func DocumentName(id, locale string) string {
	if d, ok := documentDescriptions[id]; ok {
		return d.In(locale)
	}
	return id
}
