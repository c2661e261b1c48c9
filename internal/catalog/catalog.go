// Package catalog indexes the read-only benefit-program catalog.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
)

var (
	ErrEmptyID     = errors.New("catalog entry has empty id")
	ErrDuplicateID = errors.New("duplicate catalog entry id")
)

const (
	nameWeight     = 10
	tagWeight      = 5
	categoryWeight = 3

	minTermRunes = 2
)

// Query words that carry no signal for ranking.
var stopwords = map[string]struct{}{
	"योजना": {}, "योजनाएं": {}, "scheme": {}, "schemes": {}, "स्कीम": {},
	"के": {}, "की": {}, "का": {}, "में": {}, "से": {}, "है": {}, "हैं": {}, "क्या": {},
	"मुझे": {}, "मेरे": {}, "लिए": {}, "बारे": {}, "बताओ": {}, "बताइए": {}, "जानकारी": {},
	"कौन": {}, "सी": {}, "about": {}, "the": {}, "for": {}, "what": {}, "is": {}, "tell": {},
	"me": {}, "of": {}, "and": {}, "please": {},
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	entries []domain.CatalogEntry
	byID    map[string]int
}

// ScoredEntry is a search hit.
type ScoredEntry struct {
	Entry domain.CatalogEntry `json:"entry"`
	Score int                 `json:"score"`
}

func New(entries []domain.CatalogEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]domain.CatalogEntry, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)
	for i, e := range c.entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("%s: %w", e.ID, ErrDuplicateID)
		}
		c.byID[e.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) ByID(id string) (domain.CatalogEntry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// All returns every entry in catalog order.
func (c *Catalog) All() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) ByCategory(category string) []domain.CatalogEntry {
	var out []domain.CatalogEntry
	for _, e := range c.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}

// Search scores every entry against the query terms: a term found in a
// localized name adds 10 per locale, in a tag 5 per tag, in the category
// 3. Entries with a zero score are dropped. Results are sorted by score
// descending; ties keep catalog order. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []ScoredEntry {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil
	}

	var hits []ScoredEntry
	for _, e := range c.entries {
		if score := scoreEntry(e, terms); score > 0 {
			hits = append(hits, ScoredEntry{Entry: e, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func searchTerms(query string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, tok := range nlu.Tokenize(nlu.Normalize(query)) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if len([]rune(tok)) < minTermRunes {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

func scoreEntry(e domain.CatalogEntry, terms []string) int {
	score := 0
	for _, term := range terms {
		for _, name := range e.Name {
			if strings.Contains(nlu.Normalize(name), term) {
				score += nameWeight
			}
		}
		for _, tag := range e.Tags {
			if strings.Contains(nlu.Normalize(tag), term) {
				score += tagWeight
			}
		}
		if strings.Contains(nlu.Normalize(e.Category), term) {
			score += categoryWeight
		}
	}
	return score
}
