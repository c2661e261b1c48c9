package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/statemachine"
	"github.com/Harshitk-cp/sahai/internal/store"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	c, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return tools.NewDefaultRegistry(
		c,
		store.NewMemoryApplicationStore(store.SampleApplications()...),
		nlu.NewExtractor(),
	)
}

func newTestPlanner(t *testing.T) *Planner {
	return NewPlanner(testRegistry(t), nlu.NewClassifier())
}

// executingTurn returns a turn context already moved into the executing
// phase, the way the orchestrator hands it to the executor.
func executingTurn(text string) *domain.TurnContext {
	tc := domain.NewTurnContext("s1", text, 1, statemachine.New(statemachine.DefaultGraph()))
	tc.Move(statemachine.ReceivingInput, "test")
	tc.Move(statemachine.Planning, "test")
	tc.Move(statemachine.AnalyzingIntent, "test")
	tc.Move(statemachine.SelectingTools, "test")
	tc.Move(statemachine.Executing, "test")
	return tc
}

func TestPlannerEligibilityPlan(t *testing.T) {
	fs, sess, _ := newTestFactStore()
	p := newTestPlanner(t)

	plan, extracted := p.Plan(context.Background(), "मेरी उम्र 45 साल है और आय 1 लाख है, क्या मुझे योजना मिल सकती है?", 0.9, fs)

	assert.Equal(t, domain.IntentEligibilityCheck, plan.Intent)
	assert.Equal(t, []string{tools.EligibilityEngine, tools.SchemeRetrieval}, plan.RequiredTools)
	assert.Equal(t, []domain.Field{domain.FieldAge, domain.FieldIncome}, plan.RequiredFacts)
	assert.Empty(t, plan.Missing())
	assert.InDelta(t, 0.9, plan.Confidence, 1e-9)

	assert.Equal(t, 45, extracted[domain.FieldAge])
	assert.Equal(t, 100000, extracted[domain.FieldIncome])
	assert.Equal(t, 45, sess.Facts[domain.FieldAge].Value, "extracted facts are written to the session")

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, tools.EligibilityEngine, plan.Steps[0].Tool)
	assert.Equal(t, 100000, plan.Steps[0].Inputs["income"])
}

func TestPlannerMissingIsRecomputed(t *testing.T) {
	fs, _, _ := newTestFactStore()
	p := newTestPlanner(t)

	plan, _ := p.Plan(context.Background(), "क्या मैं पात्र हूँ? मेरी उम्र 45 साल है", 1, fs)
	assert.Equal(t, []domain.Field{domain.FieldIncome}, plan.Missing())

	plan.Available[domain.FieldIncome] = 80000
	assert.Empty(t, plan.Missing())
}

func TestPlannerIntentRoutes(t *testing.T) {
	tests := []struct {
		text   string
		intent domain.Intent
		tools  []string
	}{
		{"नमस्ते", domain.IntentGreeting, nil},
		{"धन्यवाद, बहुत मदद मिली", domain.IntentFarewell, nil},
		{"मेरा आवेदन PM123456 कहाँ तक पहुंचा", domain.IntentStatusCheck, []string{tools.ApplicationStatus}},
		{"उज्ज्वला योजना के बारे में बताओ", domain.IntentSchemeInquiry, []string{tools.SchemeRetrieval}},
		{"आवेदन कैसे करें", domain.IntentApplicationHelp, []string{tools.SchemeRetrieval, tools.DocumentChecker}},
		{"कौन से दस्तावेज़ लगेंगे", domain.IntentDocumentInfo, []string{tools.DocumentChecker, tools.SchemeRetrieval}},
		{"मैं बीपीएल परिवार से हूँ", domain.IntentProvideInfo, []string{tools.EligibilityEngine}},
	}

	p := newTestPlanner(t)
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			fs, _, _ := newTestFactStore()
			plan, _ := p.Plan(context.Background(), tt.text, 1, fs)
			assert.Equal(t, tt.intent, plan.Intent)
			assert.Equal(t, tt.tools, plan.RequiredTools)
			assert.Len(t, plan.Steps, len(tt.tools))
		})
	}
}

func TestPlannerDefersConflictingWrite(t *testing.T) {
	fs, sess, _ := newTestFactStore()
	fs.Write(domain.FieldAge, 45, domain.SourceUser)
	p := newTestPlanner(t)

	plan, _ := p.Plan(context.Background(), "मेरी उम्र 50 साल है", 1, fs)

	assert.Equal(t, 50, plan.Available[domain.FieldAge], "fresh value wins in the plan snapshot")
	assert.Equal(t, 45, sess.Facts[domain.FieldAge].Value, "stored value is untouched")
	require.Len(t, fs.Pending(), 1)
	assert.Equal(t, 50, fs.Pending()[0].NewValue)
}

func TestExecutorRunsStepsInOrder(t *testing.T) {
	sess := domain.NewSession("s1", newClock().Now())
	e := NewExecutor(testRegistry(t), zap.NewNop())
	text := "पीएम किसान के लिए कौन से दस्तावेज़ चाहिए"
	tc := executingTurn(text)

	results := e.Run(context.Background(), tc, sess, []domain.PlanStep{
		{Tool: tools.DocumentChecker},
		{Tool: tools.SchemeRetrieval},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "pm-kisan", results[0].Result.Data["scheme_id"])
	assert.Equal(t, "pm-kisan", sess.CurrentEntry)
	assert.Equal(t, "id", results[1].Result.Data["mode"])
	assert.Equal(t, []string{tools.DocumentChecker, tools.SchemeRetrieval}, tc.ToolTrace)
	assert.Equal(t, statemachine.Evaluating, tc.Phase())
}

func TestExecutorStopsOnNeedsInfo(t *testing.T) {
	sess := domain.NewSession("s1", newClock().Now())
	e := NewExecutor(testRegistry(t), zap.NewNop())
	tc := executingTurn("कौन से दस्तावेज़ चाहिए")

	results := e.Run(context.Background(), tc, sess, []domain.PlanStep{
		{Tool: tools.DocumentChecker},
		{Tool: tools.SchemeRetrieval},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, []string{"scheme_id"}, results[0].Missing)
	assert.Equal(t, []string{tools.DocumentChecker}, tc.ToolTrace)
	assert.Equal(t, statemachine.WaitingForInfo, tc.Phase())
}

func TestExecutorInputAugmentation(t *testing.T) {
	e := NewExecutor(testRegistry(t), zap.NewNop())
	ctx := context.Background()

	t.Run("current entry fills document lookup", func(t *testing.T) {
		sess := domain.NewSession("s1", newClock().Now())
		sess.CurrentEntry = "ujjwala"
		tc := executingTurn("दस्तावेज़ बताइए")

		results := e.Run(ctx, tc, sess, []domain.PlanStep{{Tool: tools.DocumentChecker}})
		require.Len(t, results, 1)
		assert.Equal(t, "ujjwala", results[0].Result.Data["scheme_id"])
	})

	t.Run("reference id for status lookup", func(t *testing.T) {
		sess := domain.NewSession("s1", newClock().Now())
		tc := executingTurn("मेरा आवेदन pm123456 कहाँ है")

		results := e.Run(ctx, tc, sess, []domain.PlanStep{{Tool: tools.ApplicationStatus}})
		require.Len(t, results, 1)
		assert.Equal(t, true, results[0].Result.Data["found"])
	})

	t.Run("unknown tool is a failed result", func(t *testing.T) {
		sess := domain.NewSession("s1", newClock().Now())
		tc := executingTurn("x")

		results := e.Run(ctx, tc, sess, []domain.PlanStep{{Tool: "weather_lookup"}})
		require.Len(t, results, 1)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Err, "weather_lookup")
		assert.Equal(t, statemachine.Evaluating, tc.Phase())
	})
}
