package orchestrator

import (
	"unicode"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// hebrewShareThreshold is the Hebrew letter share above which a message
// counts as Hebrew. Hebrew sentences routinely embed Latin identifiers and
// file names, so the bar sits well below half.
const hebrewShareThreshold = 0.3

// DetectLanguage infers the language of a message from its letters. A
// message with no letters at all keeps the conversation's previous
// language, defaulting to English for a brand-new conversation.
func DetectLanguage(message string, previous models.Language) models.Language {
	var hebrew, latin int
	for _, r := range message {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			hebrew++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	total := hebrew + latin
	if total == 0 {
		if previous.Valid() {
			return previous
		}
		return models.LangEnglish
	}
	if float64(hebrew)/float64(total) >= hebrewShareThreshold {
		return models.LangHebrew
	}
	return models.LangEnglish
}
