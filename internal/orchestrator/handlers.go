package orchestrator

import (
	"regexp"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Invocation is the input to per-agent planning: the entity-resolved
// message plus everything the message itself cannot carry.
type Invocation struct {
	Message  string
	Language models.Language
	Files    []models.FileRef
	User     models.UserContext
}

// operationRule maps message phrasing to one tool call. Rules are checked
// in order; the last rule of each agent has no keywords and acts as the
// agent's default operation.
type operationRule struct {
	keywords map[models.Language][]string
	// whenFiles also fires the rule when the request carries attachments,
	// keyword match or not.
	whenFiles bool
	tool      string
	params    func(inv Invocation) map[string]any
}

// Planner turns (agent, invocation) into a concrete tool call. Planning
// is deterministic: same agent and invocation, same tool and parameters.
type Planner struct {
	rules map[string][]operationRule
}

// Plan returns the tool to execute and its parameters. ok is false only
// for agents the planner does not know.
func (p *Planner) Plan(agent string, inv Invocation) (tool string, params map[string]any, ok bool) {
	rules, found := p.rules[agent]
	if !found {
		return "", nil, false
	}

	lowered := strings.ToLower(inv.Message)
	for _, rule := range rules {
		switch {
		case len(rule.keywords) == 0,
			matchesAny(lowered, rule.keywords[inv.Language]),
			rule.whenFiles && len(inv.Files) > 0:
			return rule.tool, rule.buildParams(inv), true
		}
	}
	return "", nil, false
}

func (r operationRule) buildParams(inv Invocation) map[string]any {
	params := map[string]any{
		"user_id":         inv.User.UserID,
		"organization_id": inv.User.OrganizationID,
	}
	if r.params != nil {
		for k, v := range r.params(inv) {
			params[k] = v
		}
	}
	return params
}

func matchesAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// NewPlanner builds the default rule set, one entry per routing agent.
func NewPlanner() *Planner {
	listKeywords := map[models.Language][]string{
		models.LangEnglish: {"list", "show", "what", "which", "my "},
		models.LangHebrew:  {"הצג", "רשימה", "אילו", "מה ", "שלי"},
	}

	return &Planner{rules: map[string][]operationRule{
		"filesystem": {
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"read", "open"},
					models.LangHebrew:  {"קרא", "פתח"},
				},
				tool: "read_file",
				params: func(inv Invocation) map[string]any {
					return map[string]any{"path": filePath(inv)}
				},
			},
			{tool: "list_files"},
		},
		"signing": {
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"complete", "finish", "finalize"},
					models.LangHebrew:  {"סיים", "השלם"},
				},
				tool: "complete_signing",
				params: func(inv Invocation) map[string]any {
					return map[string]any{"document_id": tokenAfter(inv.Message, "document", "מסמך", "המסמך")}
				},
			},
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"field", "place"},
					models.LangHebrew:  {"שדה", "שדות"},
				},
				tool: "add_signature_fields",
				params: func(inv Invocation) map[string]any {
					return map[string]any{"document_id": tokenAfter(inv.Message, "document", "מסמך", "המסמך")}
				},
			},
			{
				tool: "create_self_sign",
				params: func(inv Invocation) map[string]any {
					return map[string]any{
						"document_id": tokenAfter(inv.Message, "document", "מסמך", "המסמך"),
						"recipients":  emailAddresses(inv.Message),
					}
				},
			},
		},
		"template": {
			{
				keywords: listKeywords,
				tool:     "list_templates",
			},
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"create", "new template"},
					models.LangHebrew:  {"צור", "תבנית חדשה"},
				},
				tool: "create_template",
				params: func(inv Invocation) map[string]any {
					return map[string]any{"name": tokenAfter(inv.Message, "template", "תבנית", "התבנית")}
				},
			},
			{
				tool: "use_template",
				params: func(inv Invocation) map[string]any {
					return map[string]any{
						"template_id": tokenAfter(inv.Message, "template", "תבנית", "מהתבנית", "בתבנית", "התבנית"),
						"recipients":  emailAddresses(inv.Message),
					}
				},
			},
		},
		"document": {
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"upload"},
					models.LangHebrew:  {"העלה", "העלאה"},
				},
				whenFiles: true,
				tool:      "upload_document",
				params: func(inv Invocation) map[string]any {
					return map[string]any{"path": filePath(inv), "filename": fileName(inv)}
				},
			},
			{
				keywords: listKeywords,
				tool:     "list_documents",
			},
			{tool: "list_documents"},
		},
		"contact": {
			{
				keywords: map[models.Language][]string{
					models.LangEnglish: {"add", "create", "new"},
					models.LangHebrew:  {"הוסף", "צור"},
				},
				tool: "add_contact",
				params: func(inv Invocation) map[string]any {
					params := map[string]any{"name": tokenAfter(inv.Message, "contact", "קשר")}
					if emails := emailAddresses(inv.Message); len(emails) > 0 {
						params["email"] = emails[0]
					}
					return params
				},
			},
			{tool: "list_contacts"},
		},
		"general": {
			{tool: "get_user_info"},
		},
	}}
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

func emailAddresses(message string) []string {
	return emailPattern.FindAllString(message, -1)
}

// tokenAfter returns the word following the first occurrence of any lead
// word, stripped of quotes and trailing punctuation. Empty when no lead
// word is followed by anything.
func tokenAfter(message string, leads ...string) string {
	fields := strings.Fields(message)
	for i, field := range fields[:max(len(fields)-1, 0)] {
		stripped := strings.ToLower(strings.Trim(field, `"'.,:;!?`))
		for _, lead := range leads {
			if stripped == strings.ToLower(lead) {
				return strings.Trim(fields[i+1], `"'.,:;!?`)
			}
		}
	}
	return ""
}

func filePath(inv Invocation) string {
	if len(inv.Files) > 0 {
		return inv.Files[0].Path
	}
	return tokenAfter(inv.Message, "file", "קובץ", "הקובץ")
}

func fileName(inv Invocation) string {
	if len(inv.Files) > 0 {
		return inv.Files[0].Name
	}
	return tokenAfter(inv.Message, "file", "קובץ", "הקובץ")
}
