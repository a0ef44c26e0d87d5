// Package format turns classified tool outcomes into user-facing text. A
// gate in front of the LLM formatter guarantees failures read as failures
// and responses come back in the conversation's language.
package format

import (
	"context"
	"fmt"

	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/toolresult"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Formatter renders a successful tool outcome into conversational text.
// Implementations call an LLM; they never see failed outcomes.
type Formatter interface {
	Name() string
	Format(ctx context.Context, req Request) (string, error)
}

// Request carries everything a formatter needs for one response.
type Request struct {
	Language    models.Language
	UserMessage string
	Agent       string
	Tool        string
	Payload     toolresult.Payload

	// Strict is set on the retry after a language-consistency failure;
	// the prompt repeats the language directive more forcefully.
	Strict bool
}

// errorPrefixes are the per-language prefixes every failure response
// starts with. The gate applies them verbatim, no model involved.
var errorPrefixes = map[models.Language]string{
	models.LangEnglish: "Error",
	models.LangHebrew:  "שגיאה",
}

// ErrorPrefix returns the failure prefix for lang.
func ErrorPrefix(lang models.Language) string {
	if p, ok := errorPrefixes[lang]; ok {
		return p
	}
	return errorPrefixes[models.LangEnglish]
}

// FailureText renders a failure reason as user-facing text.
func FailureText(lang models.Language, reason string) string {
	return ErrorPrefix(lang) + ": " + reason
}

// NewFormatter builds the configured LLM formatter. With no API key it
// returns nil and the gate renders everything with the fallback.
func NewFormatter(cfg config.FormatterConfig) (Formatter, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIFormatter(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicFormatter(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown formatter provider %q", cfg.Provider)
	}
}
