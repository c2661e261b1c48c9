package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type catalogListResponse struct {
	Schemes []domain.CatalogEntry `json:"schemes"`
	Count   int                   `json:"count"`
}

type catalogSearchResponse struct {
	Query   string                `json:"query"`
	Results []catalog.ScoredEntry `json:"results"`
	Count   int                   `json:"count"`
}

// List returns the catalog, optionally narrowed by category. With q set it
// ranks entries against the query instead.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	if q == "" {
		entries := h.catalog.All()
		if category != "" {
			entries = h.catalog.ByCategory(category)
		}
		if entries == nil {
			entries = []domain.CatalogEntry{}
		}
		writeJSON(w, http.StatusOK, catalogListResponse{Schemes: entries, Count: len(entries)})
		return
	}

	limit := defaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	hits := h.catalog.Search(q, 0)
	results := make([]catalog.ScoredEntry, 0, len(hits))
	for _, hit := range hits {
		if category != "" && !strings.EqualFold(hit.Entry.Category, category) {
			continue
		}
		results = append(results, hit)
		if len(results) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, catalogSearchResponse{Query: q, Results: results, Count: len(results)})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "scheme not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
