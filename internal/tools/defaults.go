package tools

import (
	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
)

// NewDefaultRegistry registers the five standard tools.
func NewDefaultRegistry(c *catalog.Catalog, statuses domain.ApplicationStatusSource, extractor nlu.FactExtractor) *Registry {
	return NewRegistry(
		NewEligibility(c),
		NewRetrieval(c),
		NewDocuments(c),
		NewStatus(statuses),
		NewExtractor(extractor),
	)
}
