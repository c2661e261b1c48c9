package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"go.uber.org/zap"
)

const (
	escalationWindow    = 5 * time.Minute
	escalationThreshold = 5
	recentLookback      = 5

	Helpline = "1800-111-555"
)

type ActionType string

const (
	ActionReprompt    ActionType = "reprompt"
	ActionRephrase    ActionType = "rephrase"
	ActionSuggestText ActionType = "suggest_text"
	ActionConfirm     ActionType = "confirm"
	ActionExamples    ActionType = "examples"
	ActionRedirect    ActionType = "redirect"
	ActionAsk         ActionType = "ask"
	ActionClarify     ActionType = "clarify"
	ActionChoose      ActionType = "choose"
	ActionApologize   ActionType = "apologize"
	ActionAlternative ActionType = "alternative"
	ActionRetry       ActionType = "retry"
	ActionFallback    ActionType = "fallback"
	ActionWait        ActionType = "wait"
	ActionEscalate    ActionType = "escalate"
)

// RecoveryAction is one step of a category's escalation ladder.
type RecoveryAction struct {
	Type          ActionType
	Templates     map[string]string
	RequiresInput bool
}

// FailureContext carries the values substituted into templates.
type FailureContext struct {
	MissingFields []string
	Field         string
	OldValue      any
	NewValue      any
	Partial       string
}

// Recovery is what the handler decided for one failure.
type Recovery struct {
	Category      domain.FailureCategory
	Action        ActionType
	Message       string
	RequiresInput bool
	Escalated     bool
}

var recoveryActions = map[domain.FailureCategory][]RecoveryAction{
	domain.FailureSTTNoAudio: {
		{ActionReprompt, map[string]string{
			"hi": "मुझे आपकी आवाज़ नहीं सुनाई दी। कृपया फिर से बोलिए।",
			"en": "I could not hear you. Please say that again.",
		}, true},
		{ActionSuggestText, map[string]string{
			"hi": "अभी भी आवाज़ नहीं आ रही। कृपया माइक जांचें या अपना सवाल लिखकर भेजें।",
			"en": "I still cannot hear anything. Please check your microphone or type your question.",
		}, true},
	},
	domain.FailureSTTUnclear: {
		{ActionReprompt, map[string]string{
			"hi": "माफ़ कीजिए, मैं ठीक से समझ नहीं पाई। कृपया धीरे और साफ़ बोलिए।",
			"en": "Sorry, I did not catch that. Please speak slowly and clearly.",
		}, true},
		{ActionRephrase, map[string]string{
			"hi": "कृपया छोटे वाक्य में बताइए, जैसे: 'मेरी उम्र 45 साल है'।",
			"en": "Please try a short sentence, for example: 'I am 45 years old'.",
		}, true},
	},
	domain.FailureSTTPartial: {
		{ActionConfirm, map[string]string{
			"hi": "मैंने सुना: \"{partial}\"। क्या यह सही है? कृपया पूरी बात दोबारा बताइए।",
			"en": "I heard: \"{partial}\". Is that right? Please repeat the full sentence.",
		}, true},
	},
	domain.FailureInputEmpty: {
		{ActionReprompt, map[string]string{
			"hi": "मैंने कुछ नहीं सुना। आप सरकारी योजनाओं के बारे में कुछ भी पूछ सकते हैं।",
			"en": "I did not get any input. You can ask me anything about government schemes.",
		}, true},
		{ActionExamples, map[string]string{
			"hi": "आप पूछ सकते हैं: 'मुझे कौन सी योजना मिल सकती है?' या 'पीएम किसान के लिए कौन से दस्तावेज़ चाहिए?'",
			"en": "You could ask: 'Which schemes can I get?' or 'What documents do I need for PM Kisan?'",
		}, true},
	},
	domain.FailureInputOffTopic: {
		{ActionRedirect, map[string]string{
			"hi": "मैं सरकारी कल्याण योजनाओं में मदद करती हूँ। क्या आप किसी योजना के बारे में जानना चाहेंगे?",
			"en": "I help with government welfare schemes. Would you like to know about a scheme?",
		}, true},
	},
	domain.FailureMissingInfo: {
		{ActionAsk, map[string]string{
			"hi": "आपकी पात्रता जांचने के लिए मुझे आपकी {missing_fields} जानना है। कृपया बताइए।",
			"en": "To check your eligibility I need your {missing_fields}. Please tell me.",
		}, true},
		{ActionExamples, map[string]string{
			"hi": "कृपया अपनी {missing_fields} बताइए। जैसे: 'मेरी उम्र 45 साल है और सालाना आय 1 लाख है'।",
			"en": "Please share your {missing_fields}. For example: 'I am 45 and my yearly income is 1 lakh'.",
		}, true},
	},
	domain.FailureContradiction: {
		{ActionClarify, map[string]string{
			"hi": "आपने पहले {field} {old_value} बताई थी, अब {new_value} बता रहे हैं। कौन सी सही है?",
			"en": "Earlier you said your {field} was {old_value}, now you said {new_value}. Which one is correct?",
		}, true},
		{ActionChoose, map[string]string{
			"hi": "कृपया बताइए: {field} {old_value} सही है या {new_value}? 'पहले वाली' या 'नई वाली' कहिए।",
			"en": "Please confirm: is your {field} {old_value} or {new_value}? Say 'old' or 'new'.",
		}, true},
	},
	domain.FailureToolError: {
		{ActionApologize, map[string]string{
			"hi": "माफ़ कीजिए, जानकारी लाने में दिक्कत हुई। कृपया थोड़ी देर में फिर पूछिए।",
			"en": "Sorry, I had trouble fetching that information. Please ask again in a moment.",
		}, false},
		{ActionAlternative, map[string]string{
			"hi": "यह जानकारी अभी उपलब्ध नहीं है। आप हेल्पलाइन " + Helpline + " पर भी पूछ सकते हैं।",
			"en": "This information is not available right now. You can also call the helpline " + Helpline + ".",
		}, false},
	},
	domain.FailureLLMError: {
		{ActionRetry, map[string]string{"hi": "", "en": ""}, false},
		{ActionFallback, map[string]string{
			"hi": "माफ़ कीजिए, अभी जवाब तैयार करने में दिक्कत हो रही है। कृपया अपना सवाल दोबारा पूछिए।",
			"en": "Sorry, I am having trouble preparing an answer right now. Please ask your question again.",
		}, true},
	},
	domain.FailureSystemError: {
		{ActionApologize, map[string]string{
			"hi": "माफ़ कीजिए, कुछ तकनीकी गड़बड़ हो गई। कृपया फिर से कोशिश करें।",
			"en": "Sorry, something went wrong on our side. Please try again.",
		}, true},
		{ActionAlternative, map[string]string{
			"hi": "तकनीकी समस्या बनी हुई है। कृपया कुछ देर बाद कोशिश करें या हेल्पलाइन " + Helpline + " पर कॉल करें।",
			"en": "The problem persists. Please try later or call the helpline " + Helpline + ".",
		}, false},
	},
	domain.FailureRateLimit: {
		{ActionWait, map[string]string{
			"hi": "बहुत सारे अनुरोध आ गए हैं। कृपया कुछ सेकंड रुककर फिर पूछिए।",
			"en": "Too many requests right now. Please wait a few seconds and ask again.",
		}, true},
	},
}

var escalationMessage = map[string]string{
	"hi": "माफ़ कीजिए, मैं अभी आपकी पूरी मदद नहीं कर पा रही। कृपया हेल्पलाइन " + Helpline +
		" पर कॉल करें, नज़दीकी CSC (जन सेवा केंद्र) जाएँ या अपनी ग्राम पंचायत से संपर्क करें।",
	"en": "Sorry, I am unable to help you fully right now. Please call the helpline " + Helpline +
		", visit your nearest CSC (Common Service Centre) or contact your gram panchayat.",
}

var fieldNames = map[string]map[string]string{
	"hi": {
		"age":          "उम्र",
		"income":       "सालाना आय",
		"gender":       "लिंग",
		"category":     "जाति वर्ग",
		"state":        "राज्य",
		"area":         "क्षेत्र (गांव या शहर)",
		"occupation":   "व्यवसाय",
		"disability":   "विकलांगता",
		"bpl":          "बीपीएल कार्ड",
		"scheme_id":    "योजना का नाम",
		"reference_id": "आवेदन संख्या",
	},
	"en": {
		"age":          "age",
		"income":       "annual income",
		"gender":       "gender",
		"category":     "social category",
		"state":        "state",
		"area":         "area (rural or urban)",
		"occupation":   "occupation",
		"disability":   "disability",
		"bpl":          "BPL card",
		"scheme_id":    "scheme name",
		"reference_id": "application number",
	},
}

// FailureHandler maps failures to escalating recovery messages. It keeps no
// state; occurrences are recorded on the session.
type FailureHandler struct {
	locale string
	now    func() time.Time
	logger *zap.Logger
}

func NewFailureHandler(locale string, logger *zap.Logger) *FailureHandler {
	if locale != "en" {
		locale = "hi"
	}
	return &FailureHandler{locale: locale, now: time.Now, logger: logger}
}

func (h *FailureHandler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *FailureHandler) Locale() string {
	return h.locale
}

// Handle records a failure of category on sess and returns the recovery to
// use. Once the session has seen too many failures in a short window the
// escalation message is returned instead.
func (h *FailureHandler) Handle(sess *domain.Session, category domain.FailureCategory, fc FailureContext) Recovery {
	now := h.now()

	if h.shouldEscalate(sess, now) {
		h.record(sess, category, now)
		h.logger.Warn("escalating after repeated failures",
			zap.String("session_id", sess.ID),
			zap.String("category", string(category)))
		return Recovery{
			Category:  category,
			Action:    ActionEscalate,
			Message:   escalationMessage[h.locale],
			Escalated: true,
		}
	}

	actions, ok := recoveryActions[category]
	if !ok {
		actions = recoveryActions[domain.FailureSystemError]
	}

	idx := h.recentCount(sess, category)
	if idx >= len(actions) {
		idx = len(actions) - 1
	}
	h.record(sess, category, now)

	action := actions[idx]
	return Recovery{
		Category:      category,
		Action:        action.Type,
		Message:       h.render(action.Templates[h.locale], fc),
		RequiresInput: action.RequiresInput,
	}
}

// Message returns the first-rung message for category without recording
// anything. Used outside of a session, e.g. by the HTTP rate limiter.
func (h *FailureHandler) Message(category domain.FailureCategory) string {
	actions, ok := recoveryActions[category]
	if !ok {
		actions = recoveryActions[domain.FailureSystemError]
	}
	return h.render(actions[0].Templates[h.locale], FailureContext{})
}

// Escalated reports whether the next failure on sess would escalate.
func (h *FailureHandler) Escalated(sess *domain.Session) bool {
	return h.shouldEscalate(sess, h.now())
}

// FieldName returns the localized display name of a fact or tool input.
func (h *FailureHandler) FieldName(field string) string {
	if name, ok := fieldNames[h.locale][field]; ok {
		return name
	}
	return field
}

// FormatValue renders a fact value for the user.
func (h *FailureHandler) FormatValue(v any) string {
	switch b := v.(type) {
	case bool:
		if h.locale == "en" {
			if b {
				return "yes"
			}
			return "no"
		}
		if b {
			return "हाँ"
		}
		return "नहीं"
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// record appends a failure and drops records that no longer count toward
// escalation. The last recentLookback records are always kept for the ladder.
func (h *FailureHandler) record(sess *domain.Session, category domain.FailureCategory, now time.Time) {
	sess.Failures = append(sess.Failures, domain.FailureRecord{Category: category, At: now})

	cut := len(sess.Failures) - recentLookback
	i := 0
	for i < cut && now.Sub(sess.Failures[i].At) > escalationWindow {
		i++
	}
	if i > 0 {
		sess.Failures = append([]domain.FailureRecord(nil), sess.Failures[i:]...)
	}
}

func (h *FailureHandler) shouldEscalate(sess *domain.Session, now time.Time) bool {
	n := 0
	for _, f := range sess.Failures {
		if now.Sub(f.At) <= escalationWindow {
			n++
		}
	}
	return n >= escalationThreshold
}

func (h *FailureHandler) recentCount(sess *domain.Session, category domain.FailureCategory) int {
	recent := sess.Failures
	if len(recent) > recentLookback {
		recent = recent[len(recent)-recentLookback:]
	}
	n := 0
	for _, f := range recent {
		if f.Category == category {
			n++
		}
	}
	return n
}

func (h *FailureHandler) render(tmpl string, fc FailureContext) string {
	names := make([]string, 0, len(fc.MissingFields))
	for _, f := range fc.MissingFields {
		names = append(names, h.FieldName(f))
	}
	sep := " और "
	if h.locale == "en" {
		sep = " and "
	}

	r := strings.NewReplacer(
		"{missing_fields}", strings.Join(names, sep),
		"{field}", h.FieldName(fc.Field),
		"{old_value}", h.FormatValue(fc.OldValue),
		"{new_value}", h.FormatValue(fc.NewValue),
		"{partial}", fc.Partial,
	)
	return r.Replace(tmpl)
}
