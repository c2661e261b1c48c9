package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
)

type Verdict string

const (
	VerdictEligible    Verdict = "eligible"
	VerdictPartial     Verdict = "partially_eligible"
	VerdictNotEligible Verdict = "not_eligible"
)

type Outcome string

const (
	OutcomeMet     Outcome = "met"
	OutcomeFailed  Outcome = "failed"
	OutcomeUnknown Outcome = "unknown"
)

// CriterionCheck is one rule evaluated against the user's facts.
type CriterionCheck struct {
	Criterion string  `json:"criterion"`
	Outcome   Outcome `json:"outcome"`
	Reason    string  `json:"reason"`
}

type EntryVerdict struct {
	SchemeID string               `json:"scheme_id"`
	Name     domain.LocalizedText `json:"name"`
	Benefit  domain.LocalizedText `json:"benefit,omitempty"`
	Verdict  Verdict              `json:"verdict"`
	Checks   []CriterionCheck     `json:"checks"`
}

var eligibilityFacts = []domain.Field{
	domain.FieldAge,
	domain.FieldIncome,
	domain.FieldGender,
	domain.FieldCategory,
	domain.FieldBPL,
}

// Eligibility checks every catalog entry's declared rules against the
// facts passed as inputs.
type Eligibility struct {
	catalog *catalog.Catalog
}

func NewEligibility(c *catalog.Catalog) *Eligibility {
	return &Eligibility{catalog: c}
}

func (t *Eligibility) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        EligibilityEngine,
		Description: "Evaluates eligibility for every catalog entry against the user's facts",
		Optional:    []string{"age", "income", "gender", "category", "bpl"},
	}
}

func (t *Eligibility) Execute(ctx context.Context, inputs map[string]any) domain.ToolResult {
	known := 0
	for _, f := range eligibilityFacts {
		if _, ok := inputs[string(f)]; ok {
			known++
		}
	}
	if known == 0 {
		return domain.ToolResult{
			Status:     domain.ToolNeedsInfo,
			Message:    "age and income are needed to check eligibility",
			Missing:    []string{string(domain.FieldAge), string(domain.FieldIncome)},
			Confidence: 0.3,
		}
	}

	var eligible, partial, notEligible []EntryVerdict
	for _, e := range t.catalog.All() {
		v := Evaluate(e, inputs)
		switch v.Verdict {
		case VerdictEligible:
			eligible = append(eligible, v)
		case VerdictPartial:
			partial = append(partial, v)
		default:
			notEligible = append(notEligible, v)
		}
	}

	var missing []string
	if _, ok := inputs[string(domain.FieldAge)]; !ok {
		missing = append(missing, string(domain.FieldAge))
	}
	if _, ok := inputs[string(domain.FieldIncome)]; !ok {
		missing = append(missing, string(domain.FieldIncome))
	}

	status := domain.ToolPartial
	if len(eligible) > 0 {
		status = domain.ToolSuccess
	}
	confidence := 1.0
	if len(missing) > 0 {
		confidence = 0.7
	}

	return domain.ToolResult{
		Status: status,
		Data: map[string]any{
			"eligible":           eligible,
			"partially_eligible": partial,
			"not_eligible":       notEligible,
			"evaluated":          t.catalog.Len(),
		},
		Message:    fmt.Sprintf("%d eligible, %d need more information", len(eligible), len(partial)),
		Missing:    missing,
		Confidence: confidence,
	}
}

// Evaluate checks one entry. Any failed criterion makes it not eligible
// regardless of unknowns; otherwise any unknown makes it partial.
func Evaluate(e domain.CatalogEntry, inputs map[string]any) EntryVerdict {
	var checks []CriterionCheck
	rules := e.Eligibility

	age, hasAge := intInput(inputs, string(domain.FieldAge))
	if rules.AgeMin != nil {
		checks = append(checks, checkAgeMin(*rules.AgeMin, age, hasAge))
	}
	if rules.AgeMax != nil {
		checks = append(checks, checkAgeMax(*rules.AgeMax, age, hasAge))
	}

	if rules.IncomeMax != nil {
		income, ok := intInput(inputs, string(domain.FieldIncome))
		checks = append(checks, checkIncome(*rules.IncomeMax, income, ok))
	}

	if rules.Gender != "" {
		gender, ok := stringInput(inputs, string(domain.FieldGender))
		checks = append(checks, checkGender(rules.Gender, gender, ok))
	}

	if len(rules.Categories) > 0 {
		category, ok := stringInput(inputs, string(domain.FieldCategory))
		checks = append(checks, checkCategory(rules.Categories, category, ok))
	}

	if rules.RequiresBPL {
		bpl, ok := boolInput(inputs, string(domain.FieldBPL))
		checks = append(checks, checkBPL(bpl, ok))
	}

	verdict := VerdictEligible
	for _, c := range checks {
		if c.Outcome == OutcomeFailed {
			verdict = VerdictNotEligible
			break
		}
		if c.Outcome == OutcomeUnknown {
			verdict = VerdictPartial
		}
	}

	return EntryVerdict{
		SchemeID: e.ID,
		Name:     e.Name,
		Benefit:  e.Benefit,
		Verdict:  verdict,
		Checks:   checks,
	}
}

func checkAgeMin(limit, age int, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "age_min"}
	switch {
	case !known:
		c.Outcome, c.Reason = OutcomeUnknown, fmt.Sprintf("न्यूनतम उम्र %d वर्ष, उम्र की जानकारी नहीं", limit)
	case age >= limit:
		c.Outcome, c.Reason = OutcomeMet, fmt.Sprintf("उम्र %d वर्ष, न्यूनतम %d पूरी", age, limit)
	default:
		c.Outcome, c.Reason = OutcomeFailed, fmt.Sprintf("न्यूनतम उम्र %d वर्ष चाहिए", limit)
	}
	return c
}

func checkAgeMax(limit, age int, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "age_max"}
	switch {
	case !known:
		c.Outcome, c.Reason = OutcomeUnknown, fmt.Sprintf("अधिकतम उम्र %d वर्ष, उम्र की जानकारी नहीं", limit)
	case age <= limit:
		c.Outcome, c.Reason = OutcomeMet, fmt.Sprintf("उम्र %d वर्ष, सीमा %d के भीतर", age, limit)
	default:
		c.Outcome, c.Reason = OutcomeFailed, fmt.Sprintf("अधिकतम उम्र %d वर्ष है", limit)
	}
	return c
}

func checkIncome(limit, income int, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "income_max"}
	switch {
	case !known:
		c.Outcome, c.Reason = OutcomeUnknown, fmt.Sprintf("आय सीमा ₹%d, आय की जानकारी नहीं", limit)
	case income <= limit:
		c.Outcome, c.Reason = OutcomeMet, fmt.Sprintf("आय ₹%d, सीमा ₹%d के भीतर", income, limit)
	default:
		c.Outcome, c.Reason = OutcomeFailed, fmt.Sprintf("आय ₹%d से अधिक नहीं होनी चाहिए", limit)
	}
	return c
}

func checkGender(required, gender string, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "gender"}
	label := "महिलाओं"
	if strings.EqualFold(required, "male") {
		label = "पुरुषों"
	}
	switch {
	case !known:
		c.Outcome, c.Reason = OutcomeUnknown, "केवल "+label+" के लिए, लिंग की जानकारी नहीं"
	case strings.EqualFold(required, gender):
		c.Outcome, c.Reason = OutcomeMet, "लिंग की शर्त पूरी"
	default:
		c.Outcome, c.Reason = OutcomeFailed, "यह योजना केवल "+label+" के लिए है"
	}
	return c
}

func checkCategory(allowed []string, category string, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "category"}
	list := strings.Join(allowed, "/")
	if !known {
		c.Outcome, c.Reason = OutcomeUnknown, "केवल "+list+" वर्ग के लिए, वर्ग की जानकारी नहीं"
		return c
	}
	for _, a := range allowed {
		if strings.EqualFold(a, category) {
			c.Outcome, c.Reason = OutcomeMet, "वर्ग "+strings.ToUpper(category)+" पात्र है"
			return c
		}
	}
	c.Outcome, c.Reason = OutcomeFailed, "केवल "+list+" वर्ग के लिए"
	return c
}

func checkBPL(bpl, known bool) CriterionCheck {
	c := CriterionCheck{Criterion: "bpl"}
	switch {
	case !known:
		c.Outcome, c.Reason = OutcomeUnknown, "बीपीएल कार्ड की जानकारी नहीं"
	case bpl:
		c.Outcome, c.Reason = OutcomeMet, "बीपीएल परिवार"
	default:
		c.Outcome, c.Reason = OutcomeFailed, "बीपीएल कार्ड आवश्यक है"
	}
	return c
}
