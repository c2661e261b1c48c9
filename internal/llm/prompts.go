package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

const responsePromptHi = `आप "सहाय" हैं, भारत सरकार की कल्याण योजनाओं के बारे में मदद करने वाली एक महिला सहायिका।

संदर्भ:
इरादा: %s

उपयोगकर्ता ने पहले से यह जानकारी दी है: %s
अभी भी चाहिए: %s

नियम:
- जो जानकारी पहले से है उसे दोबारा मत पूछें।
- सिर्फ "अभी भी चाहिए" वाली चीज़ें ही पूछें, और सिर्फ तब जब ज़रूरी हो।
- अगर उम्र और आय दोनों मिल गई हैं, तो पात्रता बताएं।
- टूल परिणामों से बाहर की कोई योजना या राशि मत बताएं।

टूल परिणाम:
%s

हाल की बातचीत:
%s

उपयोगकर्ता का संदेश: "%s"

जवाब बोलकर सुनाया जाएगा:
- जवाब बहुत छोटा रखें (अधिकतम 2-3 वाक्य)।
- लंबी सूची न दें।
- स्त्रीलिंग क्रियाएं इस्तेमाल करें (जैसे "मैं बताती हूँ")।

हिंदी में छोटा जवाब:`

const responsePromptEn = `You are "Sahai", a female assistant helping people with Indian government welfare schemes.

Context:
Intent: %s

Already provided by the user: %s
Still needed: %s

Rules:
- Never ask again for information that is already provided.
- Only ask for the "still needed" items, and only when necessary.
- If both age and income are known, state the eligibility.
- Do not mention schemes or amounts that are not in the tool results.

Tool results:
%s

Recent conversation:
%s

User message: "%s"

The reply will be spoken aloud:
- Keep it very short (at most 2-3 sentences).
- Do not read out long lists.

Short reply in English:`

// ToolOutput is one successful tool payload handed to the model.
type ToolOutput struct {
	Tool   string         `json:"tool"`
	Result map[string]any `json:"result"`
}

// ResponsePrompt holds everything the reply prompt is built from.
type ResponsePrompt struct {
	Locale    string
	Intent    domain.Intent
	Known     []string
	Needed    []string
	Outputs   []ToolOutput
	History   []domain.Turn
	Utterance string
}

// BuildResponsePrompt renders the reply-generation prompt.
func BuildResponsePrompt(p ResponsePrompt) (string, error) {
	outputs := p.Outputs
	if outputs == nil {
		outputs = []ToolOutput{}
	}
	toolJSON, err := json.Marshal(outputs)
	if err != nil {
		return "", fmt.Errorf("marshal tool outputs: %w", err)
	}

	none, nothing := "कोई जानकारी नहीं", "कुछ नहीं"
	tmpl := responsePromptHi
	if p.Locale == "en" {
		none, nothing = "nothing yet", "nothing"
		tmpl = responsePromptEn
	}

	known := none
	if len(p.Known) > 0 {
		known = strings.Join(p.Known, ", ")
	}
	needed := nothing
	if len(p.Needed) > 0 {
		needed = strings.Join(p.Needed, ", ")
	}

	return fmt.Sprintf(tmpl, p.Intent, known, needed, string(toolJSON), formatHistory(p.History), p.Utterance), nil
}

func formatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
