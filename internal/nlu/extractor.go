package nlu

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

// FactExtractor turns raw text into a partial fact map.
type FactExtractor interface {
	Extract(text string) domain.Facts
}

const (
	lakh     = 100000
	thousand = 1000

	minAge = 1
	maxAge = 120

	// Bare income figures at or below this are read as lakhs ("आय 2").
	bareLakhCeiling = 100
)

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:साल|वर्ष|years?|yrs?)`),
	regexp.MustCompile(`उम्र\s*(?:है\s*)?(\d+)`),
	regexp.MustCompile(`मेरी\s*उम्र\s*(\d+)`),
	regexp.MustCompile(`age\s*(?:is\s*)?(\d+)`),
}

type incomePattern struct {
	re         *regexp.Regexp
	multiplier float64
	bare       bool
}

var incomePatterns = []incomePattern{
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:लाख|lakhs?|lacs?)`), multiplier: lakh},
	{re: regexp.MustCompile(`(\d+)\s*(?:हज\x{093C}?ार|thousand|k)(?:[^a-z]|$)`), multiplier: thousand},
	{re: regexp.MustCompile(`आय\s*(?:है\s*)?(?:₹\s*)?(\d+)`), multiplier: 1, bare: true},
	{re: regexp.MustCompile(`income\s*(?:is\s*)?(?:rs\.?\s*|₹\s*)?(\d+)`), multiplier: 1, bare: true},
}

type keywordValue struct {
	value    string
	keywords []string
}

var (
	femaleWords = []string{"महिला", "female", "woman", "औरत", "लड़की", "स्त्री", "विधवा", "widow"}
	maleWords   = []string{"पुरुष", "male", "man", "आदमी", "लड़का"}

	categoryWords = []keywordValue{
		{"SC", []string{"एससी", "sc", "अनुसूचित जाति", "scheduled caste"}},
		{"ST", []string{"एसटी", "st", "अनुसूचित जनजाति", "scheduled tribe"}},
		{"OBC", []string{"ओबीसी", "obc", "अन्य पिछड़ा वर्ग", "other backward"}},
		{"GENERAL", []string{"सामान्य", "general", "जनरल"}},
	}

	bplWords = []string{"बीपीएल", "bpl", "गरीबी रेखा", "below poverty"}

	areaWords = []keywordValue{
		{"rural", []string{"गांव", "गाँव", "ग्रामीण", "village", "rural"}},
		{"urban", []string{"शहर", "शहरी", "city", "urban"}},
	}

	occupationWords = []keywordValue{
		{"farmer", []string{"किसान", "farmer", "खेती", "कृषि"}},
		{"labourer", []string{"मजदूर", "मज़दूर", "labourer", "laborer", "श्रमिक"}},
		{"student", []string{"छात्र", "छात्रा", "विद्यार्थी", "student"}},
	}

	disabilityWords = []string{"विकलांग", "दिव्यांग", "disabled", "handicap", "handicapped"}

	// State names match whole tokens only; short Hindi names would
	// otherwise hit inside unrelated words.
	stateWords = []keywordValue{
		{"Uttar Pradesh", []string{"उत्तर प्रदेश", "uttar pradesh"}},
		{"Bihar", []string{"बिहार", "bihar"}},
		{"Rajasthan", []string{"राजस्थान", "rajasthan"}},
		{"Madhya Pradesh", []string{"मध्य प्रदेश", "madhya pradesh"}},
		{"Maharashtra", []string{"महाराष्ट्र", "maharashtra"}},
		{"West Bengal", []string{"पश्चिम बंगाल", "west bengal"}},
		{"Gujarat", []string{"गुजरात", "gujarat"}},
		{"Karnataka", []string{"कर्नाटक", "karnataka"}},
		{"Tamil Nadu", []string{"तमिलनाडु", "तमिल नाडु", "tamil nadu"}},
		{"Kerala", []string{"केरल", "kerala"}},
		{"Odisha", []string{"ओडिशा", "उड़ीसा", "odisha", "orissa"}},
		{"Punjab", []string{"पंजाब", "punjab"}},
		{"Haryana", []string{"हरियाणा", "haryana"}},
		{"Jharkhand", []string{"झारखंड", "jharkhand"}},
		{"Chhattisgarh", []string{"छत्तीसगढ़", "chhattisgarh"}},
		{"Assam", []string{"असम", "assam"}},
		{"Delhi", []string{"दिल्ली", "delhi"}},
		{"Uttarakhand", []string{"उत्तराखंड", "uttarakhand"}},
		{"Telangana", []string{"तेलंगाना", "telangana"}},
		{"Andhra Pradesh", []string{"आंध्र प्रदेश", "andhra pradesh"}},
	}
)

// PatternExtractor is the ordered, first-match-wins fact extractor.
type PatternExtractor struct{}

func NewExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

func (e *PatternExtractor) Extract(text string) domain.Facts {
	facts := make(domain.Facts)
	doc := newDocument(text)

	if age, ok := extractAge(doc.text); ok {
		facts[domain.FieldAge] = age
	}
	if income, ok := extractIncome(doc.text); ok {
		facts[domain.FieldIncome] = income
	}

	switch {
	case doc.hasAny(femaleWords):
		facts[domain.FieldGender] = "female"
	case doc.hasAny(maleWords):
		facts[domain.FieldGender] = "male"
	}

	if v, ok := firstMatch(doc, categoryWords); ok {
		facts[domain.FieldCategory] = v
	}
	if doc.hasAny(bplWords) {
		facts[domain.FieldBPL] = true
	}
	if v, ok := firstMatch(doc, areaWords); ok {
		facts[domain.FieldArea] = v
	}
	if v, ok := firstMatch(doc, occupationWords); ok {
		facts[domain.FieldOccupation] = v
	}
	if doc.hasAny(disabilityWords) {
		facts[domain.FieldDisability] = true
	}
	for _, s := range stateWords {
		if anyToken(doc, s.keywords) {
			facts[domain.FieldState] = s.value
			break
		}
	}

	return facts
}

func extractAge(text string) (int, bool) {
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil || age < minAge || age > maxAge {
			return 0, false
		}
		return age, true
	}
	return 0, false
}

func extractIncome(text string) (int, bool) {
	for _, p := range incomePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		mult := p.multiplier
		if p.bare && n <= bareLakhCeiling {
			mult = lakh
		}
		return int(math.Round(n * mult)), true
	}
	return 0, false
}

func firstMatch(doc *document, table []keywordValue) (string, bool) {
	for _, kv := range table {
		if doc.hasAny(kv.keywords) {
			return kv.value, true
		}
	}
	return "", false
}

func anyToken(doc *document, kws []string) bool {
	for _, kw := range kws {
		if doc.hasToken(strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
