package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inkwell-ai/inkwell/internal/toolresult"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// salientFields are rendered from payload items, in this order. Anything
// else in the payload is noise for a chat response.
var salientFields = []string{"name", "title", "filename", "status", "email", "id", "guid", "message"}

// fieldLabels translate payload field names for display. Fields missing
// here fall back to a title-cased form of the field name.
var fieldLabels = map[models.Language]map[string]string{
	models.LangEnglish: {
		"name":     "Name",
		"title":    "Title",
		"filename": "File",
		"status":   "Status",
		"email":    "Email",
		"id":       "ID",
		"guid":     "ID",
		"message":  "Message",
	},
	models.LangHebrew: {
		"name":     "שם",
		"title":    "כותרת",
		"filename": "קובץ",
		"status":   "סטטוס",
		"email":    "דוא\"ל",
		"id":       "מזהה",
		"guid":     "מזהה",
		"message":  "הודעה",
	},
}

// defaultStatus fills in for items the tool service returns without an
// explicit status.
var defaultStatus = map[models.Language]string{
	models.LangEnglish: "Active",
	models.LangHebrew:  "פעיל",
}

var doneText = map[models.Language]string{
	models.LangEnglish: "Done.",
	models.LangHebrew:  "בוצע.",
}

var fieldTitler = cases.Title(language.English)

// Fallback renders a successful payload deterministically, with no model
// in the loop. It is the response of last resort when no formatter is
// configured or the formatter misbehaves.
func Fallback(req Request) string {
	switch req.Payload.Kind {
	case toolresult.KindText:
		return req.Payload.Text
	case toolresult.KindList:
		return renderItems(listItems(req.Payload.List), req.Language)
	case toolresult.KindObject:
		return renderObject(req.Payload.Object, req.Language)
	default:
		return doneText[req.Language]
	}
}

func renderObject(obj map[string]any, lang models.Language) string {
	for _, field := range []string{"items", "data", "results", "templates", "documents", "contacts"} {
		if list, ok := obj[field].([]any); ok {
			return renderItems(listItems(list), lang)
		}
		if nested, ok := obj[field].(map[string]any); ok {
			return renderFields(nested, lang)
		}
	}
	return renderFields(obj, lang)
}

func renderItems(items []map[string]any, lang models.Language) string {
	if len(items) == 0 {
		if lang == models.LangHebrew {
			return "לא נמצאו פריטים."
		}
		return "No items found."
	}

	var b strings.Builder
	if lang == models.LangHebrew {
		fmt.Fprintf(&b, "נמצאו %d פריטים:\n", len(items))
	} else {
		fmt.Fprintf(&b, "Found %d items:\n", len(items))
	}
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(itemLine(item, lang))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// itemLine renders one listing entry: its name, its id when distinct, and
// a status (defaulted when the payload has none).
func itemLine(item map[string]any, lang models.Language) string {
	name := firstString(item, "name", "title", "filename", "email")
	id := firstString(item, "id", "guid")
	status := firstString(item, "status")
	if status == "" {
		status = defaultStatus[lang]
	}

	switch {
	case name == "" && id == "":
		return renderFields(item, lang)
	case name == "":
		return fmt.Sprintf("%s (%s)", id, status)
	case id == "" || strings.EqualFold(name, id):
		return fmt.Sprintf("%s (%s)", name, status)
	default:
		return fmt.Sprintf("%s [%s] (%s)", name, id, status)
	}
}

func renderFields(obj map[string]any, lang models.Language) string {
	var parts []string
	for _, field := range salientFields {
		v, ok := obj[field]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		parts = append(parts, fieldLabel(field, lang)+": "+strings.TrimSpace(s))
	}
	if len(parts) == 0 {
		return doneText[lang]
	}
	return strings.Join(parts, ", ")
}

func fieldLabel(field string, lang models.Language) string {
	if label, ok := fieldLabels[lang][field]; ok {
		return label
	}
	return fieldTitler.String(strings.ReplaceAll(field, "_", " "))
}

func listItems(list []any) []map[string]any {
	var items []map[string]any
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func firstString(item map[string]any, fields ...string) string {
	for _, f := range fields {
		if s, ok := item[f].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
