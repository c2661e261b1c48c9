package service

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

const (
	successWeight      = 0.6
	completenessWeight = 0.4
	noToolSuccessRate  = 0.5
)

var clarifyingIntents = map[domain.Intent]bool{
	domain.IntentEligibilityCheck: true,
	domain.IntentApplicationHelp:  true,
}

// Evaluator scores an execution and decides what the turn does next.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate inspects results against plan. pending is the session's
// unresolved contradiction queue, oldest first. canRetry reports whether
// the turn still has retry budget.
func (e *Evaluator) Evaluate(plan *domain.Plan, results []domain.ExecutionResult, pending []*domain.Contradiction, canRetry bool) domain.Evaluation {
	var succeeded, failed []domain.ExecutionResult
	for _, r := range results {
		switch {
		case r.Success:
			succeeded = append(succeeded, r)
		case r.Result.Status == domain.ToolError:
			failed = append(failed, r)
		}
	}

	missing := stillMissing(plan, results)

	var detail *domain.ContradictionDetail
	if len(pending) > 0 {
		c := pending[0]
		detail = &domain.ContradictionDetail{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue}
	}

	successRate := noToolSuccessRate
	if len(results) > 0 {
		successRate = float64(len(succeeded)) / float64(len(results))
	}
	completeness := 1 - float64(len(missing))/float64(max(len(plan.RequiredFacts), 1))
	quality := clamp01(successWeight*successRate + completenessWeight*completeness)

	ev := domain.Evaluation{
		Complete:           len(failed) == 0 && len(missing) == 0 && detail == nil,
		Quality:            quality,
		Missing:            missing,
		NeedsClarification: len(missing) > 0 && clarifyingIntents[plan.Intent],
		Contradiction:      detail,
	}

	for _, r := range failed {
		ev.Issues = append(ev.Issues, fmt.Sprintf("tool %s failed: %s", r.Tool, r.Err))
	}
	if len(missing) > 0 {
		ev.Issues = append(ev.Issues, "missing information: "+strings.Join(missing, ", "))
		ev.Suggestions = append(ev.Suggestions, "ask the user for the missing information")
	}
	if detail != nil {
		ev.Issues = append(ev.Issues, "contradiction on "+string(detail.Field))
		ev.Suggestions = append(ev.Suggestions, "ask the user which value is correct")
	}

	switch {
	case detail != nil:
		ev.NextAction = domain.ActionAskClarification
	case ev.NeedsClarification:
		ev.NextAction = domain.ActionAskUser
	case len(failed) > 0 && canRetry:
		ev.NextAction = domain.ActionReExecute
	default:
		ev.NextAction = domain.ActionRespond
	}
	return ev
}

// stillMissing unions plan-level and result-level missing fields, drops
// anything the plan already has, and returns them in vocabulary order.
func stillMissing(plan *domain.Plan, results []domain.ExecutionResult) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if seen[f] || plan.Available.Has(domain.Field(f)) {
			return
		}
		seen[f] = true
		out = append(out, f)
	}

	for _, f := range plan.Missing() {
		add(string(f))
	}
	for _, r := range results {
		for _, f := range r.Missing {
			add(f)
		}
	}
	domain.SortFields(out)
	return out
}

// FailedSteps returns the plan steps whose tools errored.
func FailedSteps(plan *domain.Plan, results []domain.ExecutionResult) []domain.PlanStep {
	failed := make(map[string]bool)
	for _, r := range results {
		if r.Result.Status == domain.ToolError {
			failed[r.Tool] = true
		}
	}
	var out []domain.PlanStep
	for _, s := range plan.Steps {
		if failed[s.Tool] {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
