package nlu

// schemeKeywords is checked in order; more specific programs come first
// so "शहरी आवास" resolves to the urban housing entry.
var schemeKeywords = []keywordValue{
	{"pm-kisan", []string{"किसान", "पीएम किसान", "pm kisan", "kisan"}},
	{"pm-awas-urban", []string{"शहरी आवास", "urban awas", "urban housing", "pmay urban"}},
	{"pm-awas-gramin", []string{"आवास", "awas", "घर", "मकान", "housing"}},
	{"old-age-pension", []string{"वृद्धावस्था", "बुढ़ापा", "old age", "बुजुर्ग", "senior citizen"}},
	{"widow-pension", []string{"विधवा पेंशन", "widow pension", "विधवा", "widow"}},
	{"disability-pension", []string{"विकलांग", "दिव्यांग", "disability pension", "disability"}},
	{"ayushman-bharat", []string{"आयुष्मान", "ayushman", "स्वास्थ्य बीमा", "health insurance"}},
	{"ujjwala", []string{"उज्ज्वला", "ujjwala", "गैस कनेक्शन", "lpg"}},
	{"sukanya-samriddhi", []string{"सुकन्या", "sukanya"}},
	{"post-matric-scholarship", []string{"छात्रवृत्ति", "scholarship"}},
}

// DetectSchemeID maps catalog-entry keywords in text to an entry id.
// It returns "" when nothing matches.
func DetectSchemeID(text string) string {
	if id, ok := firstMatch(newDocument(text), schemeKeywords); ok {
		return id
	}
	return ""
}
