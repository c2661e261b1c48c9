package domain

type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentFarewell         Intent = "farewell"
	IntentStatusCheck      Intent = "status-check"
	IntentEligibilityCheck Intent = "eligibility-check"
	IntentSchemeInquiry    Intent = "scheme-inquiry"
	IntentApplicationHelp  Intent = "application-help"
	IntentDocumentInfo     Intent = "document-info"
	IntentProvideInfo      Intent = "provide-info"
	IntentCorrection       Intent = "correction"
	IntentGeneralQuestion  Intent = "general-question"
)

type PlanStep struct {
	Tool   string         `json:"tool"`
	Inputs map[string]any `json:"inputs"`
}

// Plan is the Planner's output for a single turn.
type Plan struct {
	Intent        Intent     `json:"intent"`
	RequiredTools []string   `json:"required_tools"`
	RequiredFacts []Field    `json:"required_facts"`
	Available     Facts      `json:"available"`
	Steps         []PlanStep `json:"steps"`
	Confidence    float64    `json:"confidence"`
}

// Missing is always derived from RequiredFacts and Available.
func (p *Plan) Missing() []Field {
	var out []Field
	for _, f := range p.RequiredFacts {
		if !p.Available.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

type NextAction string

const (
	ActionRespond          NextAction = "respond"
	ActionAskUser          NextAction = "ask_user"
	ActionAskClarification NextAction = "ask_clarification"
	ActionReExecute        NextAction = "re_execute"
)

// ContradictionDetail is the pending conflict surfaced by the Evaluator.
type ContradictionDetail struct {
	Field    Field `json:"field"`
	OldValue any   `json:"old_value"`
	NewValue any   `json:"new_value"`
}

type Evaluation struct {
	Complete           bool                 `json:"complete"`
	Quality            float64              `json:"quality"`
	Issues             []string             `json:"issues,omitempty"`
	Suggestions        []string             `json:"suggestions,omitempty"`
	Missing            []string             `json:"missing,omitempty"`
	NeedsClarification bool                 `json:"needs_clarification"`
	Contradiction      *ContradictionDetail `json:"contradiction,omitempty"`
	NextAction         NextAction           `json:"next_action"`
}
