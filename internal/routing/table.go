package routing

import (
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// DefaultTable returns the built-in agent routing table. Order is the
// tie-break and must not change at runtime: file operations are claimed
// before signing so "sign the file budget.pdf" still reaches the signing
// agent only via its own keywords.
func DefaultTable() *Table {
	return NewTable([]AgentDescriptor{
		{
			Name: "filesystem",
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"browse", "read file", "list files", "show files", "my files", "folder"},
				models.LangHebrew:  {"קובץ", "קבצים", "תיקייה", "תיקיות"},
			},
			Tools: []string{"list_files", "read_file"},
		},
		{
			Name: "signing",
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"sign", "signature", "signing"},
				models.LangHebrew:  {"חתימה", "חתימות", "לחתום", "חתום"},
			},
			Tools: []string{"create_self_sign", "add_signature_fields", "complete_signing"},
		},
		{
			Name: "template",
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"template", "templates"},
				models.LangHebrew:  {"תבנית", "תבניות"},
			},
			Tools: []string{"list_templates", "create_template", "use_template"},
		},
		{
			Name: "document",
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"upload", "document", "documents", "pdf"},
				models.LangHebrew:  {"מסמך", "מסמכים", "העלה", "העלאה"},
			},
			Tools: []string{"list_documents", "upload_document", "get_document_info"},
		},
		{
			Name: "contact",
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"contact", "contacts", "recipient"},
				models.LangHebrew:  {"איש קשר", "אנשי קשר", "נמען"},
			},
			Tools: []string{"list_contacts", "add_contact"},
		},
		{
			Name: DefaultAgent,
			Keywords: map[models.Language][]string{
				models.LangEnglish: {"help", "login", "logout", "who am i"},
				models.LangHebrew:  {"עזרה", "התחבר", "התנתק"},
			},
			Tools: []string{"get_user_info", "check_auth"},
		},
	})
}
