package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/llm"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResponder(gen domain.TextGenerator, locale string) *Responder {
	failures, _ := newTestFailureHandler(locale)
	return NewResponder(gen, failures, domain.GenerateOptions{Temperature: 0.7, MaxTokens: 300}, 0, zap.NewNop())
}

func eligibilityResult(names ...string) domain.ExecutionResult {
	verdicts := make([]tools.EntryVerdict, 0, len(names))
	for _, n := range names {
		verdicts = append(verdicts, tools.EntryVerdict{Name: domain.LocalizedText{"hi": n}, Verdict: tools.VerdictEligible})
	}
	return domain.ExecutionResult{
		Tool:    tools.EligibilityEngine,
		Success: true,
		Result: domain.ToolResult{
			Status: domain.ToolSuccess,
			Data:   map[string]any{"eligible": verdicts},
		},
	}
}

func TestResponderTemplates(t *testing.T) {
	r := newTestResponder(nil, "hi")

	assert.Contains(t, r.Greeting(nil), "मैं सहाय हूँ")
	known := r.Greeting(domain.Facts{domain.FieldAge: 45})
	assert.Contains(t, known, "उम्र: 45")
	assert.NotContains(t, known, "मैं सहाय हूँ")

	assert.Contains(t, r.Farewell(), Helpline)
	assert.Contains(t, r.Farewell(), "india.gov.in")

	en := newTestResponder(nil, "en")
	assert.Contains(t, en.Farewell(), "helpline "+Helpline)
}

func TestResponderResolved(t *testing.T) {
	r := newTestResponder(nil, "hi")

	kept := &domain.Contradiction{Field: domain.FieldAge, OldValue: 45, NewValue: 50, Resolution: domain.ResolutionKeptOld}
	assert.Equal(t, "ठीक है, मैंने आपकी उम्र 45 ही रखी है।", r.Resolved(kept))

	updated := &domain.Contradiction{Field: domain.FieldAge, OldValue: 45, NewValue: 50, Resolution: domain.ResolutionUsedNew}
	assert.Equal(t, "ठीक है, मैंने आपकी उम्र 50 अपडेट कर दी है।", r.Resolved(updated))
}

func TestResponderSummary(t *testing.T) {
	r := newTestResponder(nil, "hi")

	got := r.Summary([]domain.ExecutionResult{eligibilityResult("A", "B", "C", "D")})
	assert.Equal(t, "आप 4 योजनाओं के लिए पात्र हो सकते हैं: A, B, C और 1 अन्य।", got)

	got = r.Summary([]domain.ExecutionResult{{
		Tool:    tools.SchemeRetrieval,
		Success: true,
		Result: domain.ToolResult{Status: domain.ToolSuccess, Data: map[string]any{
			"schemes": []domain.CatalogEntry{{
				ID:      "ujjwala",
				Name:    domain.LocalizedText{"hi": "उज्ज्वला योजना"},
				Benefit: domain.LocalizedText{"hi": "मुफ्त गैस कनेक्शन"},
			}},
		}},
	}})
	assert.Equal(t, "उज्ज्वला योजना: मुफ्त गैस कनेक्शन", got)

	got = r.Summary([]domain.ExecutionResult{{
		Tool:    tools.ApplicationStatus,
		Success: true,
		Result: domain.ToolResult{Status: domain.ToolPartial, Data: map[string]any{
			"found": false, "reference_id": "XX000000",
		}},
	}})
	assert.Contains(t, got, "XX000000")

	assert.Empty(t, r.Summary([]domain.ExecutionResult{errResult(tools.SchemeRetrieval)}))
}

func TestResponderSummaryLocale(t *testing.T) {
	verdict := domain.ExecutionResult{
		Tool:    tools.EligibilityEngine,
		Success: true,
		Result: domain.ToolResult{Status: domain.ToolSuccess, Data: map[string]any{
			"eligible": []tools.EntryVerdict{{
				Name:    domain.LocalizedText{"hi": "पीएम किसान", "en": "PM Kisan"},
				Verdict: tools.VerdictEligible,
			}},
		}},
	}
	docs := domain.ExecutionResult{
		Tool:    tools.DocumentChecker,
		Success: true,
		Result: domain.ToolResult{Status: domain.ToolSuccess, Data: map[string]any{
			"scheme_name": domain.LocalizedText{"hi": "उज्ज्वला योजना", "en": "Ujjwala Yojana"},
			"documents":   []tools.RequiredDocument{{ID: "aadhaar", Description: domain.LocalizedText{"hi": "आधार कार्ड", "en": "Aadhaar card"}}},
		}},
	}

	en := newTestResponder(nil, "en")
	assert.Equal(t, "You may be eligible for 1 schemes: PM Kisan.", en.Summary([]domain.ExecutionResult{verdict}))
	assert.Contains(t, en.Summary([]domain.ExecutionResult{docs}), "Documents needed for Ujjwala Yojana: Aadhaar card.")

	hi := newTestResponder(nil, "hi")
	assert.Contains(t, hi.Summary([]domain.ExecutionResult{verdict}), "पीएम किसान")
	assert.Contains(t, hi.Summary([]domain.ExecutionResult{docs}), "उज्ज्वला योजना के लिए ज़रूरी दस्तावेज़: आधार कार्ड")
}

func TestResponderHybrid(t *testing.T) {
	r := newTestResponder(nil, "hi")
	sess := domain.NewSession("s1", newClock().Now())

	got := r.Hybrid(sess, []domain.ExecutionResult{eligibilityResult("पीएम किसान")}, []string{"income"})
	assert.Equal(t, "आप 1 योजनाओं के लिए पात्र हो सकते हैं: पीएम किसान। आपकी पात्रता जांचने के लिए मुझे आपकी सालाना आय जानना है। कृपया बताइए।", got)
	assert.Len(t, sess.Failures, 1)

	got = r.Hybrid(sess, nil, []string{"age", "income"})
	assert.Contains(t, got, "उम्र और सालाना आय")
}

func TestResponderGenerate(t *testing.T) {
	ctx := context.Background()
	plan := eligibilityPlan(domain.Facts{domain.FieldAge: 45, domain.FieldIncome: 100000})

	t.Run("reply is used verbatim", func(t *testing.T) {
		mock := llm.NewMockClient("आप पीएम किसान के लिए पात्र हैं।")
		r := newTestResponder(mock, "hi")
		sess := domain.NewSession("s1", newClock().Now())

		got := r.Generate(ctx, sess, plan, []domain.ExecutionResult{eligibilityResult("पीएम किसान")}, nil, "क्या मुझे योजना मिलेगी")
		assert.Equal(t, "आप पीएम किसान के लिए पात्र हैं।", got)

		require.Equal(t, 1, mock.Calls())
		assert.Contains(t, mock.Prompts[0], "उम्र: 45")
		assert.Contains(t, mock.Prompts[0], "क्या मुझे योजना मिलेगी")
		assert.Equal(t, 300, mock.Options[0].MaxTokens)
	})

	t.Run("one retry then success", func(t *testing.T) {
		mock := llm.NewMockClient("दूसरी बार")
		mock.Errors = []error{errors.New("timeout")}
		r := newTestResponder(mock, "hi")
		sess := domain.NewSession("s1", newClock().Now())

		assert.Equal(t, "दूसरी बार", r.Generate(ctx, sess, plan, nil, nil, "x"))
		assert.Equal(t, 2, mock.Calls())
	})

	t.Run("fallback after second failure", func(t *testing.T) {
		boom := errors.New("boom")
		mock := llm.NewMockClient("never")
		mock.Errors = []error{boom, boom}
		r := newTestResponder(mock, "hi")
		sess := domain.NewSession("s1", newClock().Now())

		got := r.Generate(ctx, sess, plan, nil, nil, "x")
		assert.Contains(t, got, "जवाब तैयार करने में दिक्कत")
		assert.Equal(t, 2, mock.Calls())
		assert.Len(t, sess.Failures, 2)
	})

	t.Run("no generator", func(t *testing.T) {
		r := newTestResponder(nil, "hi")
		sess := domain.NewSession("s1", newClock().Now())

		assert.Contains(t, r.Generate(ctx, sess, plan, []domain.ExecutionResult{eligibilityResult("A")}, nil, "x"), "पात्र")
		assert.Contains(t, r.Generate(ctx, sess, plan, nil, []string{"reference_id"}, "x"), "आवेदन संख्या")
		assert.Equal(t, cannedReply["hi"], r.Generate(ctx, sess, plan, nil, nil, "x"))
	})
}

func TestResolveFromText(t *testing.T) {
	failures, _ := newTestFailureHandler("hi")
	c := &domain.Contradiction{Field: domain.FieldAge, OldValue: 45, NewValue: 50}
	extract := newTestPlanner(t)

	tests := []struct {
		text        string
		wantKeepNew bool
		wantOK      bool
	}{
		{"पहले वाली सही है", false, true},
		{"नई वाली", true, true},
		{"50 सही है", true, true},
		{"45 ही है", false, true},
		{"मेरी उम्र 45 साल है", false, true},
		{"the old one", false, true},
		{"use the new one", true, true},
		{"हाँ ठीक है", false, false},
		{"मेरी आय अभी 3 लाख है", false, false},
		{"my income is 3 lakh now", false, false},
		{"मेरी उम्र अभी 52 साल है", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			extracted := extract.extract(context.Background(), tt.text)
			keepNew, ok := resolveFromText(c, tt.text, extracted, failures)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKeepNew, keepNew)
			}
		})
	}
}
