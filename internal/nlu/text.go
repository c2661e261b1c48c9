// Package nlu holds the deterministic, pattern-based language
// understanding used by the planner: fact extraction and intent
// classification over mixed Hindi/English text.
package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, maps Devanagari digits to ASCII and
// collapses whitespace. NFC leaves nukta letters decomposed, so "ज़"
// typed either way compares equal.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(norm.NFC.String(text)) {
		if r >= '०' && r <= '९' {
			r = '0' + (r - '०')
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text on anything that is not a letter,
// combining mark or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
	})
}

// document is a normalized utterance ready for keyword matching.
type document struct {
	text   string
	joined string
	tokens map[string]struct{}
	words  int
}

func newDocument(raw string) *document {
	norm := Normalize(raw)
	toks := Tokenize(norm)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return &document{
		text:   norm,
		joined: " " + strings.Join(toks, " ") + " ",
		tokens: set,
		words:  len(strings.Fields(norm)),
	}
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// has matches one keyword. Phrases and non-Latin words match as
// substrings so inflected Hindi forms still hit; single Latin words must
// match a whole token (or its plural) so "man" never matches "woman".
func (d *document) has(kw string) bool {
	kw = norm.NFC.String(kw)
	if strings.Contains(kw, " ") || !isLatin(kw) {
		return strings.Contains(d.text, kw)
	}
	if _, ok := d.tokens[kw]; ok {
		return true
	}
	_, ok := d.tokens[kw+"s"]
	return ok
}

func (d *document) hasAny(kws []string) bool {
	for _, kw := range kws {
		if d.has(kw) {
			return true
		}
	}
	return false
}

// hasToken requires an exact token (or exact phrase) match in any script.
func (d *document) hasToken(kw string) bool {
	kw = norm.NFC.String(kw)
	if strings.Contains(kw, " ") {
		return strings.Contains(d.joined, " "+kw+" ")
	}
	_, ok := d.tokens[kw]
	return ok
}

// ContainsAny reports whether text mentions any of the keywords, using the
// same matching rules as intent classification.
func ContainsAny(text string, keywords []string) bool {
	return newDocument(text).hasAny(keywords)
}

// HasToken reports whether text contains word as a whole token or phrase.
func HasToken(text, word string) bool {
	return newDocument(text).hasToken(Normalize(word))
}
