package service

import (
	"testing"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func okResult(tool string) domain.ExecutionResult {
	return domain.ExecutionResult{
		Tool:    tool,
		Success: true,
		Result:  domain.ToolResult{Status: domain.ToolSuccess, Confidence: 1},
	}
}

func errResult(tool string) domain.ExecutionResult {
	return domain.ExecutionResult{
		Tool:   tool,
		Result: domain.ToolResult{Status: domain.ToolError, Message: "backend down"},
		Err:    "backend down",
	}
}

func eligibilityPlan(available domain.Facts) *domain.Plan {
	return &domain.Plan{
		Intent:        domain.IntentEligibilityCheck,
		RequiredTools: []string{tools.EligibilityEngine, tools.SchemeRetrieval},
		RequiredFacts: []domain.Field{domain.FieldAge, domain.FieldIncome},
		Available:     available,
		Steps: []domain.PlanStep{
			{Tool: tools.EligibilityEngine},
			{Tool: tools.SchemeRetrieval},
		},
	}
}

func TestEvaluatorNextAction(t *testing.T) {
	complete := domain.Facts{domain.FieldAge: 45, domain.FieldIncome: 100000}
	pending := []*domain.Contradiction{{Field: domain.FieldAge, OldValue: 45, NewValue: 50}}

	tests := []struct {
		name     string
		plan     *domain.Plan
		results  []domain.ExecutionResult
		pending  []*domain.Contradiction
		canRetry bool
		want     domain.NextAction
	}{
		{
			name:    "all good",
			plan:    eligibilityPlan(complete),
			results: []domain.ExecutionResult{okResult(tools.EligibilityEngine), okResult(tools.SchemeRetrieval)},
			want:    domain.ActionRespond,
		},
		{
			name:     "contradiction beats everything",
			plan:     eligibilityPlan(domain.Facts{}),
			results:  []domain.ExecutionResult{errResult(tools.EligibilityEngine)},
			pending:  pending,
			canRetry: true,
			want:     domain.ActionAskClarification,
		},
		{
			name:     "missing facts on eligibility",
			plan:     eligibilityPlan(domain.Facts{domain.FieldAge: 45}),
			results:  []domain.ExecutionResult{errResult(tools.EligibilityEngine)},
			canRetry: true,
			want:     domain.ActionAskUser,
		},
		{
			name:     "failure with retry budget",
			plan:     eligibilityPlan(complete),
			results:  []domain.ExecutionResult{errResult(tools.EligibilityEngine), okResult(tools.SchemeRetrieval)},
			canRetry: true,
			want:     domain.ActionReExecute,
		},
		{
			name:    "failure without retry budget",
			plan:    eligibilityPlan(complete),
			results: []domain.ExecutionResult{errResult(tools.EligibilityEngine), okResult(tools.SchemeRetrieval)},
			want:    domain.ActionRespond,
		},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := e.Evaluate(tt.plan, tt.results, tt.pending, tt.canRetry)
			assert.Equal(t, tt.want, ev.NextAction)
		})
	}
}

func TestEvaluatorQuality(t *testing.T) {
	e := NewEvaluator()

	// No tools ran and one of two required facts is missing.
	ev := e.Evaluate(eligibilityPlan(domain.Facts{domain.FieldAge: 45}), nil, nil, true)
	assert.InDelta(t, 0.6*0.5+0.4*0.5, ev.Quality, 1e-9)
	assert.False(t, ev.Complete)
	assert.True(t, ev.NeedsClarification)

	// One of two tools failed, nothing missing.
	ev = e.Evaluate(
		eligibilityPlan(domain.Facts{domain.FieldAge: 45, domain.FieldIncome: 1}),
		[]domain.ExecutionResult{okResult(tools.EligibilityEngine), errResult(tools.SchemeRetrieval)},
		nil, false)
	assert.InDelta(t, 0.6*0.5+0.4, ev.Quality, 1e-9)
	assert.Len(t, ev.Issues, 1)

	ev = e.Evaluate(eligibilityPlan(domain.Facts{domain.FieldAge: 45, domain.FieldIncome: 1}),
		[]domain.ExecutionResult{okResult(tools.EligibilityEngine)}, nil, false)
	assert.InDelta(t, 1.0, ev.Quality, 1e-9)
	assert.True(t, ev.Complete)
}

func TestEvaluatorMissingUnion(t *testing.T) {
	plan := &domain.Plan{
		Intent:        domain.IntentDocumentInfo,
		RequiredFacts: []domain.Field{domain.FieldIncome},
		Available:     domain.Facts{domain.FieldAge: 45},
	}
	results := []domain.ExecutionResult{{
		Tool:    tools.DocumentChecker,
		Result:  domain.ToolResult{Status: domain.ToolNeedsInfo},
		Missing: []string{"scheme_id", "age", "income"},
	}}

	ev := NewEvaluator().Evaluate(plan, results, nil, true)

	if diff := cmp.Diff([]string{"income", "scheme_id"}, ev.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, ev.NeedsClarification, "document questions are answered, not clarified")
	assert.Equal(t, domain.ActionRespond, ev.NextAction, "needs-info is not a failure")
}

func TestEvaluatorContradictionDetail(t *testing.T) {
	pending := []*domain.Contradiction{
		{Field: domain.FieldGender, OldValue: "female", NewValue: "male"},
		{Field: domain.FieldAge, OldValue: 45, NewValue: 50},
	}
	ev := NewEvaluator().Evaluate(eligibilityPlan(domain.Facts{}), nil, pending, true)

	want := &domain.ContradictionDetail{Field: domain.FieldGender, OldValue: "female", NewValue: "male"}
	assert.Equal(t, want, ev.Contradiction, "oldest pending contradiction is surfaced")
}

func TestFailedSteps(t *testing.T) {
	plan := eligibilityPlan(domain.Facts{})
	steps := FailedSteps(plan, []domain.ExecutionResult{okResult(tools.EligibilityEngine), errResult(tools.SchemeRetrieval)})
	assert.Equal(t, []domain.PlanStep{{Tool: tools.SchemeRetrieval}}, steps)

	assert.Empty(t, FailedSteps(plan, []domain.ExecutionResult{okResult(tools.EligibilityEngine)}))
}

func TestMergeResults(t *testing.T) {
	prev := []domain.ExecutionResult{errResult(tools.EligibilityEngine), okResult(tools.SchemeRetrieval)}
	merged := mergeResults(prev, []domain.ExecutionResult{okResult(tools.EligibilityEngine)})

	assert.Len(t, merged, 2)
	assert.True(t, merged[0].Success)
	assert.False(t, prev[0].Success, "input slice is not modified")
	assert.False(t, allFailed(merged))
	assert.True(t, allFailed([]domain.ExecutionResult{errResult("a"), errResult("b")}))
	assert.False(t, allFailed(nil))
}
