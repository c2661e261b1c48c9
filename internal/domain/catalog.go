package domain

import "time"

// LocalizedText maps a locale code ("hi", "en") to text.
type LocalizedText map[string]string

// In returns the text for locale, falling back to Hindi then English.
func (t LocalizedText) In(locale string) string {
	if s, ok := t[locale]; ok && s != "" {
		return s
	}
	if s := t["hi"]; s != "" {
		return s
	}
	return t["en"]
}

// EligibilityRules are the declared criteria of a catalog entry.
// Nil bounds and empty lists mean the criterion is not checked.
type EligibilityRules struct {
	AgeMin      *int     `json:"age_min,omitempty" yaml:"age_min,omitempty"`
	AgeMax      *int     `json:"age_max,omitempty" yaml:"age_max,omitempty"`
	IncomeMax   *int     `json:"income_max,omitempty" yaml:"income_max,omitempty"`
	Gender      string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	RequiresBPL bool     `json:"requires_bpl,omitempty" yaml:"requires_bpl,omitempty"`
}

// CatalogEntry describes one benefit program.
type CatalogEntry struct {
	ID             string           `json:"id" yaml:"id"`
	Name           LocalizedText    `json:"name" yaml:"name"`
	Category       string           `json:"category" yaml:"category"`
	Description    LocalizedText    `json:"description" yaml:"description"`
	Benefit        LocalizedText    `json:"benefit" yaml:"benefit"`
	Eligibility    EligibilityRules `json:"eligibility" yaml:"eligibility"`
	Documents      []string         `json:"documents" yaml:"documents"`
	ApplicationURL string           `json:"application_url,omitempty" yaml:"application_url,omitempty"`
	Helpline       string           `json:"helpline,omitempty" yaml:"helpline,omitempty"`
	Tags           []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ApplicationStatus is a record held by the external status service.
type ApplicationStatus struct {
	ReferenceID     string    `json:"reference_id"`
	SchemeID        string    `json:"scheme_id"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage,omitempty"`
	Amount          int       `json:"amount,omitempty"`
	NextInstallment string    `json:"next_installment,omitempty"`
	Remarks         string    `json:"remarks,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
