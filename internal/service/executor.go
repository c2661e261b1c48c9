package service

import (
	"context"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/statemachine"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"go.uber.org/zap"
)

// Executor runs plan steps against the tool registry.
type Executor struct {
	registry *tools.Registry
	logger   *zap.Logger
}

func NewExecutor(registry *tools.Registry, logger *zap.Logger) *Executor {
	return &Executor{registry: registry, logger: logger}
}

// Run executes steps in order, moving tc through executing and
// calling-tool. It stops at the first tool that needs more information and
// leaves tc in waiting-for-info; otherwise it leaves tc in evaluating.
func (e *Executor) Run(ctx context.Context, tc *domain.TurnContext, sess *domain.Session, steps []domain.PlanStep) []domain.ExecutionResult {
	results := make([]domain.ExecutionResult, 0, len(steps))

	for i, step := range steps {
		if i > 0 {
			tc.Move(statemachine.Executing, "next step")
		}
		tc.Move(statemachine.CallingTool, step.Tool)

		inputs := e.prepareInputs(step, tc.Input, sess)
		res := e.registry.Execute(ctx, step.Tool, inputs)
		tc.ToolTrace = append(tc.ToolTrace, step.Tool)

		er := domain.ExecutionResult{
			Tool:    step.Tool,
			Success: res.Usable(),
			Result:  res,
			Missing: res.Missing,
		}
		if res.Status == domain.ToolError {
			er.Err = res.Message
			e.logger.Warn("tool failed",
				zap.String("session_id", sess.ID),
				zap.String("tool", step.Tool),
				zap.String("error", res.Message))
		}
		results = append(results, er)

		if res.Status == domain.ToolNeedsInfo {
			tc.Move(statemachine.WaitingForInfo, step.Tool+" needs info")
			return results
		}
	}

	if len(steps) == 0 {
		tc.Move(statemachine.Evaluating, "no steps")
	} else {
		tc.Move(statemachine.Evaluating, "steps done")
	}
	return results
}

func (e *Executor) prepareInputs(step domain.PlanStep, text string, sess *domain.Session) map[string]any {
	inputs := make(map[string]any, len(step.Inputs)+3)
	for k, v := range step.Inputs {
		inputs[k] = v
	}

	switch step.Tool {
	case tools.SchemeRetrieval:
		inputs["query"] = text
		if id := nlu.DetectSchemeID(text); id != "" {
			inputs["scheme_id"] = id
			sess.CurrentEntry = id
		}
	case tools.DocumentChecker:
		if id := nlu.DetectSchemeID(text); id != "" {
			inputs["scheme_id"] = id
			sess.CurrentEntry = id
		} else if sess.CurrentEntry != "" {
			inputs["scheme_id"] = sess.CurrentEntry
		}
	case tools.ApplicationStatus:
		if ref := nlu.FindReferenceID(text); ref != "" {
			inputs["reference_id"] = ref
		}
	}
	return inputs
}
