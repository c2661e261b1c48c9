package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/statemachine"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"go.uber.org/zap"
)

// OrchestratorOptions are the tunables of a turn.
type OrchestratorOptions struct {
	Locale          string
	MaxRetries      int
	HistoryLimit    int
	MinConfidence   float64
	AgeTolerance    int
	IncomeTolerance int
	Generate        domain.GenerateOptions
	LLMTimeout      time.Duration
}

func DefaultOrchestratorOptions() OrchestratorOptions {
	return OrchestratorOptions{
		Locale:          "hi",
		MaxRetries:      3,
		HistoryLimit:    20,
		MinConfidence:   0.4,
		AgeTolerance:    1,
		IncomeTolerance: 25000,
		Generate:        domain.GenerateOptions{Temperature: 0.7, MaxTokens: 1000},
		LLMTimeout:      20 * time.Second,
	}
}

// Stats are process-wide counters since start.
type Stats struct {
	Turns                  int64 `json:"turns"`
	Errors                 int64 `json:"errors"`
	Clarifications         int64 `json:"clarifications"`
	ToolCalls              int64 `json:"tool_calls"`
	Retries                int64 `json:"retries"`
	ContradictionsResolved int64 `json:"contradictions_resolved"`
	ActiveSessions         int   `json:"active_sessions"`
}

// SessionView is a point-in-time copy of a session safe to hand out.
type SessionView struct {
	ID            string                 `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	LastActivity  time.Time              `json:"last_activity"`
	Facts         domain.Facts           `json:"facts"`
	HistoryLength int                    `json:"history_length"`
	History       []domain.Turn          `json:"history,omitempty"`
	Pending       []domain.Contradiction `json:"pending_contradictions"`
	CurrentEntry  string                 `json:"current_entry,omitempty"`
	FailureCount  int                    `json:"failure_count"`
}

// turnOutcome is what a turn produced before closure.
type turnOutcome struct {
	reply   string
	clarify bool
	field   string
	// record is false for inputs rejected before planning.
	record bool
}

// Orchestrator drives a turn through planning, execution, evaluation and
// response generation.
type Orchestrator struct {
	sessions       *SessionManager
	planner        *Planner
	executor       *Executor
	evaluator      *Evaluator
	failures       *FailureHandler
	responder      *Responder
	contradictions domain.ContradictionLog
	policies       map[domain.Field]FieldPolicy
	graph          statemachine.Graph
	opts           OrchestratorOptions
	now            func() time.Time
	logger         *zap.Logger

	turns          atomic.Int64
	aborted        atomic.Int64
	clarifications atomic.Int64
	toolCalls      atomic.Int64
	retries        atomic.Int64
	resolved       atomic.Int64
}

// NewOrchestrator wires the turn pipeline. generator and contradictions
// may be nil.
func NewOrchestrator(
	sessions *SessionManager,
	registry *tools.Registry,
	classifier nlu.IntentClassifier,
	generator domain.TextGenerator,
	contradictions domain.ContradictionLog,
	opts OrchestratorOptions,
	logger *zap.Logger,
) *Orchestrator {
	failures := NewFailureHandler(opts.Locale, logger)
	return &Orchestrator{
		sessions:       sessions,
		planner:        NewPlanner(registry, classifier),
		executor:       NewExecutor(registry, logger),
		evaluator:      NewEvaluator(),
		failures:       failures,
		responder:      NewResponder(generator, failures, opts.Generate, opts.LLMTimeout, logger),
		contradictions: contradictions,
		policies:       DefaultPolicies(opts.AgeTolerance, opts.IncomeTolerance),
		graph:          statemachine.DefaultGraph(),
		opts:           opts,
		now:            time.Now,
		logger:         logger,
	}
}

// SetClock replaces the time source used for facts and failure records.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
	o.failures.SetClock(now)
}

// Turn processes one utterance. The returned error is non-nil only when ctx
// is already done; every other failure becomes a recovery reply.
func (o *Orchestrator) Turn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, release := o.sessions.Acquire(req.SessionID)
	defer release()

	o.turns.Add(1)
	tc := domain.NewTurnContext(sess.ID, req.Text, req.InputConfidence(), statemachine.New(o.graph))
	facts := NewFactStore(sess, o.policies, o.now)

	out := o.run(ctx, tc, sess, facts)
	if out.clarify {
		o.clarifications.Add(1)
	}
	o.toolCalls.Add(int64(len(tc.ToolTrace)))

	tc.Move(statemachine.Complete, "reply ready")
	if out.record {
		o.closeTurn(tc, sess, out.reply)
	}
	tc.Move(statemachine.Idle, "turn closed")

	resp := &domain.TurnResponse{
		Reply:              out.reply,
		SessionID:          sess.ID,
		Facts:              facts.Snapshot(),
		ToolsInvoked:       append([]string{}, tc.ToolTrace...),
		NeedsClarification: out.clarify,
		ClarificationField: out.field,
		Transitions:        tc.Machine.Log(),
	}
	if tc.Plan != nil {
		resp.Intent = tc.Plan.Intent
	}

	o.logger.Debug("turn complete",
		zap.String("session_id", sess.ID),
		zap.String("intent", string(resp.Intent)),
		zap.Strings("tools", resp.ToolsInvoked),
		zap.Bool("needs_clarification", resp.NeedsClarification),
		zap.Int("transitions", len(resp.Transitions)))

	return resp, nil
}

func (o *Orchestrator) run(ctx context.Context, tc *domain.TurnContext, sess *domain.Session, facts *FactStore) (out turnOutcome) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if ite, ok := p.(*statemachine.IllegalTransitionError); ok {
			panic(ite)
		}
		out = o.abort(tc, sess, p)
	}()

	tc.Move(statemachine.ReceivingInput, "turn started")

	text := strings.TrimSpace(tc.Input)
	if text == "" {
		tc.Move(statemachine.ErrorRecovery, "empty input")
		rec := o.failures.Handle(sess, domain.FailureInputEmpty, FailureContext{})
		tc.Move(statemachine.GeneratingResponse, "input-empty recovery")
		return turnOutcome{reply: rec.Message}
	}

	if tc.Confidence < o.opts.MinConfidence {
		tc.Move(statemachine.ErrorRecovery, fmt.Sprintf("low input confidence %.2f", tc.Confidence))
		tc.Move(statemachine.ClarificationNeeded, "confirm transcript")
		rec := o.failures.Handle(sess, domain.FailureSTTPartial, FailureContext{Partial: text})
		tc.Move(statemachine.GeneratingResponse, "stt-partial recovery")
		return turnOutcome{reply: rec.Message, clarify: true}
	}

	if pending := facts.Pending(); len(pending) > 0 {
		tc.Move(statemachine.HandlingContradiction, "pending contradiction on "+string(pending[0].Field))
		if out, ok := o.resolvePending(ctx, tc, sess, facts, pending[0], text); ok {
			return out
		}
		tc.Move(statemachine.Planning, "contradiction unresolved")
	} else {
		tc.Move(statemachine.Planning, "input accepted")
	}

	plan, extracted := o.planner.Plan(ctx, text, tc.Confidence, facts)
	tc.Plan = plan
	tc.Extracted = extracted
	tc.Move(statemachine.AnalyzingIntent, string(plan.Intent))

	if len(plan.Steps) == 0 {
		return o.respondWithoutTools(ctx, tc, sess, facts, text)
	}

	tc.Move(statemachine.SelectingTools, strings.Join(plan.RequiredTools, ","))
	tc.Move(statemachine.Executing, "run plan")
	results := o.executor.Run(ctx, tc, sess, plan.Steps)
	if tc.Phase() == statemachine.WaitingForInfo {
		tc.Move(statemachine.Evaluating, "partial results")
	}

	for {
		tc.Results = results
		ev := o.evaluator.Evaluate(plan, results, facts.Pending(), tc.Retries < o.opts.MaxRetries)
		tc.Evaluation = &ev

		if ev.NextAction == domain.ActionAskClarification {
			c := ev.Contradiction
			tc.Move(statemachine.HandlingContradiction, "contradiction on "+string(c.Field))
			tc.Move(statemachine.ClarificationNeeded, "ask which value is correct")
			rec := o.failures.Handle(sess, domain.FailureContradiction, FailureContext{
				Field:    string(c.Field),
				OldValue: c.OldValue,
				NewValue: c.NewValue,
			})
			tc.Move(statemachine.GeneratingResponse, "contradiction prompt")
			return turnOutcome{reply: rec.Message, clarify: true, field: string(c.Field), record: true}
		}

		tc.Move(statemachine.CheckingCompleteness, fmt.Sprintf("quality %.2f", ev.Quality))

		switch ev.NextAction {
		case domain.ActionAskUser:
			tc.Move(statemachine.ClarificationNeeded, "missing "+strings.Join(ev.Missing, ","))
			tc.Move(statemachine.GeneratingResponse, "hybrid reply")
			return turnOutcome{
				reply:   o.responder.Hybrid(sess, results, ev.Missing),
				clarify: true,
				field:   ev.Missing[0],
				record:  true,
			}

		case domain.ActionReExecute:
			tc.Retries++
			o.retries.Add(1)
			tc.Move(statemachine.Executing, fmt.Sprintf("retry %d", tc.Retries))
			rerun := o.executor.Run(ctx, tc, sess, FailedSteps(plan, results))
			if tc.Phase() == statemachine.WaitingForInfo {
				tc.Move(statemachine.Evaluating, "partial results")
			}
			results = mergeResults(results, rerun)

		default:
			tc.Move(statemachine.GeneratingResponse, "respond")
			if allFailed(results) {
				rec := o.failures.Handle(sess, domain.FailureToolError, FailureContext{})
				return turnOutcome{reply: rec.Message, record: true}
			}
			return turnOutcome{
				reply:  o.responder.Generate(ctx, sess, plan, results, ev.Missing, text),
				record: true,
			}
		}
	}
}

func (o *Orchestrator) respondWithoutTools(ctx context.Context, tc *domain.TurnContext, sess *domain.Session, facts *FactStore, text string) turnOutcome {
	if pending := facts.Pending(); len(pending) > 0 {
		c := pending[0]
		tc.Move(statemachine.ClarificationNeeded, "contradiction on "+string(c.Field))
		rec := o.failures.Handle(sess, domain.FailureContradiction, FailureContext{
			Field:    string(c.Field),
			OldValue: c.OldValue,
			NewValue: c.NewValue,
		})
		tc.Move(statemachine.GeneratingResponse, "contradiction prompt")
		return turnOutcome{reply: rec.Message, clarify: true, field: string(c.Field), record: true}
	}

	tc.Move(statemachine.GeneratingResponse, "no tools required")
	switch tc.Plan.Intent {
	case domain.IntentGreeting:
		return turnOutcome{reply: o.responder.Greeting(facts.Snapshot()), record: true}
	case domain.IntentFarewell:
		return turnOutcome{reply: o.responder.Farewell(), record: true}
	default:
		return turnOutcome{
			reply:  o.responder.Generate(ctx, sess, tc.Plan, nil, nil, text),
			record: true,
		}
	}
}

// resolvePending tries to settle c from the utterance. It reports false
// when the utterance does not answer the question.
func (o *Orchestrator) resolvePending(ctx context.Context, tc *domain.TurnContext, sess *domain.Session, facts *FactStore, c *domain.Contradiction, text string) (turnOutcome, bool) {
	extracted := o.planner.extract(ctx, text)
	keepNew, ok := resolveFromText(c, text, extracted, o.failures)
	if !ok {
		return turnOutcome{}, false
	}

	resolved, err := facts.Resolve(c.Field, keepNew, "user answered: "+text)
	if err != nil {
		o.logger.Warn("contradiction resolution failed",
			zap.String("session_id", sess.ID),
			zap.String("field", string(c.Field)),
			zap.Error(err))
		return turnOutcome{}, false
	}
	o.resolved.Add(1)
	o.recordContradiction(ctx, resolved)

	tc.Extracted = extracted
	for _, field := range extracted.Fields() {
		if field != resolved.Field {
			facts.Write(field, extracted[field], domain.SourceUser)
		}
	}

	tc.Move(statemachine.GeneratingResponse, "contradiction resolved")
	out := turnOutcome{reply: o.responder.Resolved(resolved), record: true}

	if next := facts.Pending(); len(next) > 0 {
		n := next[0]
		rec := o.failures.Handle(sess, domain.FailureContradiction, FailureContext{
			Field:    string(n.Field),
			OldValue: n.OldValue,
			NewValue: n.NewValue,
		})
		out.reply += " " + rec.Message
		out.clarify = true
		out.field = string(n.Field)
	}
	return out, true
}

// abort turns an unexpected panic into a system-error reply.
func (o *Orchestrator) abort(tc *domain.TurnContext, sess *domain.Session, p any) turnOutcome {
	tc.Errors++
	o.aborted.Add(1)
	o.logger.Error("turn aborted",
		zap.String("session_id", sess.ID),
		zap.String("phase", string(tc.Phase())),
		zap.Any("panic", p))

	if tc.Phase() == statemachine.Idle {
		tc.Move(statemachine.ReceivingInput, "recovering")
	}
	if tc.Phase() != statemachine.ErrorRecovery {
		tc.Move(statemachine.ErrorRecovery, fmt.Sprintf("panic: %v", p))
	}
	rec := o.failures.Handle(sess, domain.FailureSystemError, FailureContext{})
	tc.Move(statemachine.GeneratingResponse, "system-error recovery")
	return turnOutcome{reply: rec.Message, record: true}
}

func (o *Orchestrator) closeTurn(tc *domain.TurnContext, sess *domain.Session, reply string) {
	now := o.now()
	user := domain.Turn{
		Role:           domain.RoleUser,
		Content:        tc.Input,
		At:             now,
		ExtractedFacts: tc.Extracted,
		ToolsInvoked:   append([]string(nil), tc.ToolTrace...),
	}
	if tc.Plan != nil {
		user.Intent = tc.Plan.Intent
	}
	sess.AppendTurn(user, o.opts.HistoryLimit)
	sess.AppendTurn(domain.Turn{Role: domain.RoleAssistant, Content: reply, At: now}, o.opts.HistoryLimit)
	sess.LastActivity = now
}

func (o *Orchestrator) recordContradiction(ctx context.Context, c *domain.Contradiction) {
	if o.contradictions == nil {
		return
	}
	if err := o.contradictions.Record(ctx, c); err != nil {
		o.logger.Warn("failed to record contradiction",
			zap.String("session_id", c.SessionID),
			zap.String("contradiction_id", c.ID.String()),
			zap.Error(err))
	}
}

// ResolveContradiction settles the pending contradiction on field outside
// of a turn.
func (o *Orchestrator) ResolveContradiction(ctx context.Context, sessionID string, field domain.Field, keepNew bool, explanation string) (*domain.Contradiction, error) {
	sess, release, err := o.sessions.Lookup(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := NewFactStore(sess, o.policies, o.now).Resolve(field, keepNew, explanation)
	if err != nil {
		return nil, err
	}
	o.resolved.Add(1)
	o.recordContradiction(ctx, c)

	out := *c
	return &out, nil
}

// Session returns a copy of the session's current state.
func (o *Orchestrator) Session(id string, withHistory bool) (*SessionView, error) {
	sess, release, err := o.sessions.Lookup(id)
	if err != nil {
		return nil, err
	}
	defer release()

	view := &SessionView{
		ID:            sess.ID,
		CreatedAt:     sess.CreatedAt,
		LastActivity:  sess.LastActivity,
		Facts:         sess.Snapshot(),
		HistoryLength: len(sess.History),
		Pending:       pendingCopies(sess),
		CurrentEntry:  sess.CurrentEntry,
		FailureCount:  len(sess.Failures),
	}
	if withHistory {
		view.History = append([]domain.Turn(nil), sess.History...)
	}
	return view, nil
}

// Contradictions returns the session's unresolved contradictions, oldest
// first.
func (o *Orchestrator) Contradictions(id string) ([]domain.Contradiction, error) {
	sess, release, err := o.sessions.Lookup(id)
	if err != nil {
		return nil, err
	}
	defer release()
	return pendingCopies(sess), nil
}

func (o *Orchestrator) EndSession(id string) bool {
	return o.sessions.Delete(id)
}

func (o *Orchestrator) Stats() Stats {
	return Stats{
		Turns:                  o.turns.Load(),
		Errors:                 o.aborted.Load(),
		Clarifications:         o.clarifications.Load(),
		ToolCalls:              o.toolCalls.Load(),
		Retries:                o.retries.Load(),
		ContradictionsResolved: o.resolved.Load(),
		ActiveSessions:         o.sessions.Len(),
	}
}

func pendingCopies(sess *domain.Session) []domain.Contradiction {
	out := []domain.Contradiction{}
	for _, c := range sess.Contradictions {
		if !c.Resolved {
			out = append(out, *c)
		}
	}
	return out
}

// mergeResults replaces earlier results with re-run ones for the same tool.
func mergeResults(prev, rerun []domain.ExecutionResult) []domain.ExecutionResult {
	idx := make(map[string]int, len(prev))
	out := append([]domain.ExecutionResult(nil), prev...)
	for i, r := range out {
		idx[r.Tool] = i
	}
	for _, r := range rerun {
		if i, ok := idx[r.Tool]; ok {
			out[i] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

func allFailed(results []domain.ExecutionResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.Result.Status != domain.ToolError {
			return false
		}
	}
	return true
}
