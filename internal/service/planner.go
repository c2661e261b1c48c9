package service

import (
	"context"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/tools"
)

type intentRoute struct {
	tools []string
	facts []domain.Field
}

var intentRoutes = map[domain.Intent]intentRoute{
	domain.IntentGreeting: {},
	domain.IntentFarewell: {},
	domain.IntentEligibilityCheck: {
		tools: []string{tools.EligibilityEngine, tools.SchemeRetrieval},
		facts: []domain.Field{domain.FieldAge, domain.FieldIncome},
	},
	domain.IntentSchemeInquiry:   {tools: []string{tools.SchemeRetrieval}},
	domain.IntentApplicationHelp: {tools: []string{tools.SchemeRetrieval, tools.DocumentChecker}},
	domain.IntentDocumentInfo:    {tools: []string{tools.DocumentChecker, tools.SchemeRetrieval}},
	domain.IntentProvideInfo:     {tools: []string{tools.EligibilityEngine}},
	domain.IntentStatusCheck:     {tools: []string{tools.ApplicationStatus}},
	domain.IntentCorrection:      {},
	domain.IntentGeneralQuestion: {tools: []string{tools.SchemeRetrieval}},
}

// Planner turns an utterance into a Plan. Extracted facts are written to
// the session on the way.
type Planner struct {
	registry   *tools.Registry
	classifier nlu.IntentClassifier
}

func NewPlanner(registry *tools.Registry, classifier nlu.IntentClassifier) *Planner {
	return &Planner{registry: registry, classifier: classifier}
}

// Plan extracts facts from text, records them in facts, classifies intent
// and builds the ordered tool steps. It returns the plan and the facts
// extracted from this utterance.
func (p *Planner) Plan(ctx context.Context, text string, confidence float64, facts *FactStore) (*domain.Plan, domain.Facts) {
	extracted := p.extract(ctx, text)

	for _, field := range extracted.Fields() {
		// Writes blocked by a pending contradiction are dealt with by the
		// evaluator through the pending queue.
		facts.Write(field, extracted[field], domain.SourceUser)
	}

	intent := p.classifier.Classify(text, extracted)
	route, ok := intentRoutes[intent]
	if !ok {
		route = intentRoutes[domain.IntentGeneralQuestion]
	}

	available := facts.Snapshot().Merge(extracted)
	plan := &domain.Plan{
		Intent:        intent,
		RequiredTools: append([]string(nil), route.tools...),
		RequiredFacts: append([]domain.Field(nil), route.facts...),
		Available:     available,
		Confidence:    confidence,
	}
	for _, name := range route.tools {
		plan.Steps = append(plan.Steps, domain.PlanStep{Tool: name, Inputs: available.Inputs()})
	}
	return plan, extracted
}

func (p *Planner) extract(ctx context.Context, text string) domain.Facts {
	res := p.registry.Execute(ctx, tools.UserDataExtractor, map[string]any{"text": text})
	if res.Status != domain.ToolSuccess {
		return domain.Facts{}
	}
	facts, ok := res.Data["facts"].(domain.Facts)
	if !ok {
		return domain.Facts{}
	}
	return facts
}
