package format

import (
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

func languageDirective(req Request) string {
	var directive string
	if req.Language == models.LangHebrew {
		directive = "Respond only in Hebrew (עברית)."
	} else {
		directive = "Respond only in English."
	}
	if req.Strict {
		directive += " Your previous answer mixed languages; this time use that language exclusively, except for identifiers and file names."
	}
	return directive
}

func systemPrompt(req Request) string {
	status := `When an item has a missing or null status, describe it as "Active".`
	if req.Language == models.LangHebrew {
		status = `When an item has a missing or null status, describe it as "פעיל".`
	}
	return strings.Join([]string{
		"You are the assistant of an electronic document signing service.",
		"Summarize the tool result below for the user in one short, friendly reply.",
		"Never invent data that is not in the result, and never claim an action succeeded unless the result says so.",
		status,
		languageDirective(req),
	}, " ")
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User message: %s\n", req.UserMessage)
	if req.Tool != "" {
		fmt.Fprintf(&b, "Tool: %s\n", req.Tool)
	}
	fmt.Fprintf(&b, "Tool result:\n%s\n", string(req.Payload.Raw))
	return b.String()
}
