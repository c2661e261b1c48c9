package nlu

import (
	"regexp"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

// IntentClassifier maps an utterance (plus whatever facts were extracted
// from it) to a single intent tag.
type IntentClassifier interface {
	Classify(text string, extracted domain.Facts) domain.Intent
}

// Greetings longer than this are treated as a question that happens to
// open with a greeting.
const maxGreetingWords = 4

var referenceIDPattern = regexp.MustCompile(`\b[A-Za-z]{2}\d{6}\b`)

var (
	greetingWords    = []string{"नमस्ते", "hello", "hi", "हेलो", "नमस्कार", "प्रणाम", "namaste"}
	farewellWords    = []string{"धन्यवाद", "thank", "bye", "अलविदा", "शुक्रिया", "goodbye"}
	eligibilityWords = []string{"पात्र", "eligible", "eligibility", "मिल सकत", "योग्य", "क्या मुझे", "क्या मैं"}
	schemeWords      = []string{"योजना", "scheme", "स्कीम", "कौन सी", "बताओ", "जानकारी", "क्या है"}
	applicationWords = []string{"आवेदन", "apply", "कैसे करें", "कहां करें", "कहाँ करें", "रजिस्टर", "register"}
	documentWords    = []string{"दस्तावेज़", "दस्तावेज", "document", "कागज़", "कागज", "प्रमाण पत्र"}
	correctionWords  = []string{"गलत", "सही", "correction", "नहीं", "दरअसल", "असल में", "wrong", "actually"}
)

// KeywordClassifier checks keyword families in a fixed priority order;
// the first family that matches wins.
type KeywordClassifier struct{}

func NewClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(text string, extracted domain.Facts) domain.Intent {
	doc := newDocument(text)

	switch {
	case doc.hasAny(greetingWords) && doc.words <= maxGreetingWords:
		return domain.IntentGreeting
	case doc.hasAny(farewellWords):
		return domain.IntentFarewell
	case FindReferenceID(text) != "":
		return domain.IntentStatusCheck
	case doc.hasAny(eligibilityWords):
		return domain.IntentEligibilityCheck
	case doc.hasAny(schemeWords):
		return domain.IntentSchemeInquiry
	case doc.hasAny(applicationWords):
		return domain.IntentApplicationHelp
	case doc.hasAny(documentWords):
		return domain.IntentDocumentInfo
	case len(extracted) > 0:
		return domain.IntentProvideInfo
	case doc.hasAny(correctionWords):
		return domain.IntentCorrection
	default:
		return domain.IntentGeneralQuestion
	}
}

// FindReferenceID returns the first application reference (two letters
// followed by six digits) in text, uppercased.
func FindReferenceID(text string) string {
	m := referenceIDPattern.FindString(Normalize(text))
	return strings.ToUpper(m)
}
