package service

import (
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
)

var (
	keepOldCues = []string{"पहले वाली", "पहले वाला", "पहली वाली", "पुरानी", "पुराना", "old", "earlier", "previous", "first one"}
	useNewCues  = []string{"नई", "नया", "नयी", "अभी वाली", "अभी", "सही", "new", "now", "latest", "correct"}
)

// resolveFromText tries to read the user's answer to a pending
// contradiction. A restated value settles it first. An utterance that
// states any other fact, or a third value for the field, is not an answer.
// Otherwise an explicit mention of either value decides, then old/new cue
// words. Keep-old cues are checked before use-new ones since answers like
// "पहले वाली सही है" carry both.
func resolveFromText(c *domain.Contradiction, text string, extracted domain.Facts, failures *FailureHandler) (keepNew, ok bool) {
	if v, has := extracted[c.Field]; has {
		switch {
		case sameValue(v, c.OldValue):
			return false, true
		case sameValue(v, c.NewValue):
			return true, true
		}
	}
	if len(extracted) > 0 {
		return false, false
	}

	oldMentioned := mentions(text, c.OldValue, failures)
	newMentioned := mentions(text, c.NewValue, failures)
	switch {
	case oldMentioned && !newMentioned:
		return false, true
	case newMentioned && !oldMentioned:
		return true, true
	}

	if nlu.ContainsAny(text, keepOldCues) {
		return false, true
	}
	if nlu.ContainsAny(text, useNewCues) {
		return true, true
	}
	return false, false
}

func mentions(text string, v any, failures *FailureHandler) bool {
	s := failures.FormatValue(v)
	return s != "" && nlu.HasToken(text, s)
}
