package format

import (
	"unicode"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// scriptCounts tallies Hebrew and Latin letters in text. Digits,
// punctuation, and whitespace are script-neutral.
func scriptCounts(text string) (hebrew, latin int) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			hebrew++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	return hebrew, latin
}

// maxForeignShare is how much of the other script a response may carry
// before it counts as inconsistent. Canonical identifiers and file names
// legitimately put Latin runs inside Hebrew sentences.
const maxForeignShare = 0.4

// ScriptConsistent reports whether text is predominantly written in the
// script of lang.
func ScriptConsistent(text string, lang models.Language) bool {
	hebrew, latin := scriptCounts(text)
	total := hebrew + latin
	if total == 0 {
		return true
	}

	expected, foreign := latin, hebrew
	if lang == models.LangHebrew {
		expected, foreign = hebrew, latin
	}
	if foreign == 0 {
		return true
	}
	if expected == 0 {
		return false
	}
	return float64(foreign)/float64(total) <= maxForeignShare
}
