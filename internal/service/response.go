package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/llm"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"go.uber.org/zap"
)

const (
	promptHistoryTurns = 6
	summaryListLimit   = 3
)

var cannedReply = map[string]string{
	"hi": "मैं सरकारी योजनाओं के बारे में आपकी मदद कर सकती हूँ। आप अपनी उम्र और सालाना आय बताकर पात्रता जांच सकते हैं, या किसी योजना का नाम लेकर पूछ सकते हैं।",
	"en": "I can help you with government schemes. Tell me your age and yearly income to check eligibility, or ask about a scheme by name.",
}

// Responder renders replies: fixed templates, summaries of tool results,
// and model-generated text.
type Responder struct {
	generator domain.TextGenerator
	failures  *FailureHandler
	opts      domain.GenerateOptions
	timeout   time.Duration
	logger    *zap.Logger
}

// NewResponder creates a responder. generator may be nil, in which case
// replies are built from templates only.
func NewResponder(generator domain.TextGenerator, failures *FailureHandler, opts domain.GenerateOptions, timeout time.Duration, logger *zap.Logger) *Responder {
	return &Responder{
		generator: generator,
		failures:  failures,
		opts:      opts,
		timeout:   timeout,
		logger:    logger,
	}
}

func (r *Responder) locale() string {
	return r.failures.Locale()
}

func (r *Responder) Greeting(known domain.Facts) string {
	if r.locale() == "en" {
		if len(known) > 0 {
			return "Hello again! I still have your details: " + strings.Join(r.knownFacts(known), ", ") +
				". Would you like to check eligibility or ask about a scheme?"
		}
		return "Hello! I am Sahai, your government scheme assistant. I can explain schemes, check your eligibility and guide you through applying. What would you like to know?"
	}
	if len(known) > 0 {
		return "नमस्ते! आपकी जानकारी मेरे पास है: " + strings.Join(r.knownFacts(known), ", ") +
			"। क्या आप पात्रता जांचना चाहते हैं या किसी योजना के बारे में पूछना चाहते हैं?"
	}
	return "नमस्ते! मैं सहाय हूँ, आपकी सरकारी योजना सहायिका। मैं योजनाओं की जानकारी देने, पात्रता जांचने और आवेदन प्रक्रिया समझाने में मदद कर सकती हूँ। बताइए, आपको किस बारे में जानना है?"
}

func (r *Responder) Farewell() string {
	if r.locale() == "en" {
		return "Thank you! Remember the toll-free helpline " + Helpline + " and india.gov.in. See you again!"
	}
	return "धन्यवाद! याद रखें, टोल-फ्री हेल्पलाइन " + Helpline + " और वेबसाइट india.gov.in। फिर मिलेंगे!"
}

// Resolved confirms the value kept after a contradiction was settled.
func (r *Responder) Resolved(c *domain.Contradiction) string {
	field := r.failures.FieldName(string(c.Field))
	value := r.failures.FormatValue(c.KeptValue())
	if r.locale() == "en" {
		if c.Resolution == domain.ResolutionUsedNew {
			return fmt.Sprintf("Okay, I have updated your %s to %s.", field, value)
		}
		return fmt.Sprintf("Okay, I have kept your %s as %s.", field, value)
	}
	if c.Resolution == domain.ResolutionUsedNew {
		return fmt.Sprintf("ठीक है, मैंने आपकी %s %s अपडेट कर दी है।", field, value)
	}
	return fmt.Sprintf("ठीक है, मैंने आपकी %s %s ही रखी है।", field, value)
}

// Hybrid combines a short summary of what was found with a prompt for the
// fields that are still missing.
func (r *Responder) Hybrid(sess *domain.Session, results []domain.ExecutionResult, missing []string) string {
	parts := []string{}
	if s := r.Summary(results); s != "" {
		parts = append(parts, s)
	}
	if len(missing) > 0 {
		rec := r.failures.Handle(sess, domain.FailureMissingInfo, FailureContext{MissingFields: missing})
		parts = append(parts, rec.Message)
	}
	if len(parts) == 0 {
		return cannedReply[r.locale()]
	}
	return strings.Join(parts, " ")
}

// Summary renders the usable tool results as short sentences.
func (r *Responder) Summary(results []domain.ExecutionResult) string {
	var parts []string
	for _, res := range results {
		if !res.Success {
			continue
		}
		if s := r.summarize(res); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (r *Responder) summarize(res domain.ExecutionResult) string {
	en := r.locale() == "en"
	data := res.Result.Data

	switch res.Tool {
	case tools.EligibilityEngine:
		eligible, _ := data["eligible"].([]tools.EntryVerdict)
		if len(eligible) == 0 {
			if en {
				return "I need a little more information to confirm which schemes you qualify for."
			}
			return "किन योजनाओं के लिए आप पात्र हैं, यह पक्का करने के लिए थोड़ी और जानकारी चाहिए।"
		}
		names := make([]string, 0, len(eligible))
		for _, v := range eligible {
			names = append(names, v.Name.In(r.locale()))
		}
		if en {
			return fmt.Sprintf("You may be eligible for %d schemes: %s.", len(eligible), shortList(names, " and %d more"))
		}
		return fmt.Sprintf("आप %d योजनाओं के लिए पात्र हो सकते हैं: %s।", len(eligible), shortList(names, " और %d अन्य"))

	case tools.SchemeRetrieval:
		entries, _ := data["schemes"].([]domain.CatalogEntry)
		switch {
		case len(entries) == 0:
			return ""
		case len(entries) == 1:
			e := entries[0]
			return fmt.Sprintf("%s: %s", e.Name.In(r.locale()), e.Benefit.In(r.locale()))
		default:
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name.In(r.locale()))
			}
			if en {
				return fmt.Sprintf("I found %d schemes: %s.", len(entries), shortList(names, " and %d more"))
			}
			return fmt.Sprintf("%d योजनाएं मिलीं: %s।", len(entries), shortList(names, " और %d अन्य"))
		}

	case tools.DocumentChecker:
		docs, _ := data["documents"].([]tools.RequiredDocument)
		if len(docs) == 0 {
			return ""
		}
		names := make([]string, 0, len(docs))
		for _, d := range docs {
			names = append(names, d.Description.In(r.locale()))
		}
		name, _ := data["scheme_name"].(domain.LocalizedText)
		scheme := name.In(r.locale())
		if en {
			return fmt.Sprintf("Documents needed for %s: %s.", scheme, strings.Join(names, ", "))
		}
		return fmt.Sprintf("%s के लिए ज़रूरी दस्तावेज़: %s।", scheme, strings.Join(names, ", "))

	case tools.ApplicationStatus:
		if found, _ := data["found"].(bool); !found {
			ref, _ := data["reference_id"].(string)
			if en {
				return fmt.Sprintf("I could not find any application with number %s. Please check the number.", ref)
			}
			return fmt.Sprintf("आवेदन संख्या %s का कोई रिकॉर्ड नहीं मिला। कृपया नंबर जांच लें।", ref)
		}
		app, ok := data["application"].(*domain.ApplicationStatus)
		if !ok {
			return ""
		}
		var sb strings.Builder
		if en {
			fmt.Fprintf(&sb, "Application %s is %s", app.ReferenceID, app.Status)
			if app.Stage != "" {
				fmt.Fprintf(&sb, " (%s)", app.Stage)
			}
			sb.WriteString(".")
			if app.NextInstallment != "" {
				fmt.Fprintf(&sb, " Next installment: %s.", app.NextInstallment)
			}
			return sb.String()
		}
		fmt.Fprintf(&sb, "आवेदन %s की स्थिति: %s", app.ReferenceID, app.Status)
		if app.Stage != "" {
			fmt.Fprintf(&sb, " (%s)", app.Stage)
		}
		sb.WriteString("।")
		if app.NextInstallment != "" {
			fmt.Fprintf(&sb, " अगली किस्त: %s।", app.NextInstallment)
		}
		return sb.String()
	}
	return ""
}

// Generate asks the text generator for a reply. A failed call is retried
// once; after that the llm-error fallback is returned. Without a generator
// the reply is built from the tool results.
func (r *Responder) Generate(ctx context.Context, sess *domain.Session, plan *domain.Plan, results []domain.ExecutionResult, missing []string, text string) string {
	if r.generator == nil {
		if s := r.Summary(results); s != "" {
			return s
		}
		if len(missing) > 0 {
			return r.Hybrid(sess, nil, missing)
		}
		return cannedReply[r.locale()]
	}

	prompt, err := llm.BuildResponsePrompt(r.promptInput(sess, plan, results, missing, text))
	if err != nil {
		r.logger.Error("failed to build response prompt", zap.Error(err))
		return r.failures.Handle(sess, domain.FailureSystemError, FailureContext{}).Message
	}

	for {
		reply, err := r.generate(ctx, prompt)
		if err == nil {
			return reply
		}

		r.logger.Warn("text generation failed",
			zap.String("session_id", sess.ID),
			zap.Error(err))

		rec := r.failures.Handle(sess, domain.FailureLLMError, FailureContext{})
		if rec.Action != ActionRetry {
			return rec.Message
		}
	}
}

func (r *Responder) generate(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	reply, err := r.generator.Generate(ctx, prompt, r.opts)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", llm.ErrEmptyResponse
	}
	return reply, nil
}

func (r *Responder) promptInput(sess *domain.Session, plan *domain.Plan, results []domain.ExecutionResult, missing []string, text string) llm.ResponsePrompt {
	needed := make([]string, 0, len(missing))
	for _, f := range missing {
		needed = append(needed, r.failures.FieldName(f))
	}

	var outputs []llm.ToolOutput
	for _, res := range results {
		if res.Success && res.Result.Data != nil {
			outputs = append(outputs, llm.ToolOutput{Tool: res.Tool, Result: res.Result.Data})
		}
	}

	history := sess.History
	if len(history) > promptHistoryTurns {
		history = history[len(history)-promptHistoryTurns:]
	}

	return llm.ResponsePrompt{
		Locale:    r.locale(),
		Intent:    plan.Intent,
		Known:     r.knownFacts(plan.Available),
		Needed:    needed,
		Outputs:   outputs,
		History:   history,
		Utterance: text,
	}
}

func (r *Responder) knownFacts(facts domain.Facts) []string {
	out := make([]string, 0, len(facts))
	for _, f := range facts.Fields() {
		out = append(out, r.failures.FieldName(string(f))+": "+r.failures.FormatValue(facts[f]))
	}
	return out
}

// shortList joins the first few names and summarizes the rest with more,
// a format taking the remaining count.
func shortList(names []string, more string) string {
	if len(names) <= summaryListLimit {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:summaryListLimit], ", ") + fmt.Sprintf(more, len(names)-summaryListLimit)
}
