package resolver

import (
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// KindSurface lists the ordered surface forms that can precede an entity
// name of one kind, per language. More specific forms come first so a
// longer lead-in is consumed before a bare noun.
type KindSurface struct {
	Kind    string
	LeadIns map[models.Language][]string
}

// langOrder fixes the language iteration order for deterministic
// substitution. The conversation's own language is tried first by the
// resolver; remaining languages follow this order.
var langOrder = []models.Language{models.LangEnglish, models.LangHebrew}

// DefaultKinds covers the entity kinds the tool layer returns listings for.
func DefaultKinds() []KindSurface {
	return []KindSurface{
		{
			Kind: "template",
			LeadIns: map[models.Language][]string{
				models.LangEnglish: {"from the template", "from template", "using template", "the template", "template"},
				models.LangHebrew:  {"מהתבנית", "בתבנית", "לתבנית", "התבנית", "תבנית"},
			},
		},
		{
			Kind: "document",
			LeadIns: map[models.Language][]string{
				models.LangEnglish: {"from the document", "from document", "the document", "document"},
				models.LangHebrew:  {"מהמסמך", "במסמך", "למסמך", "המסמך", "מסמך"},
			},
		},
		{
			Kind: "contact",
			LeadIns: map[models.Language][]string{
				models.LangEnglish: {"to the contact", "to contact", "the contact", "contact"},
				models.LangHebrew:  {"לאיש הקשר", "איש הקשר", "איש קשר"},
			},
		},
	}
}
