// Package resolver rewrites informal entity references in a message into
// the canonical identifiers downstream tools require.
package resolver

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/inkwell-ai/inkwell/internal/conversation"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Resolver substitutes known entity names with canonical identifiers using
// a fixed, ordered set of surface patterns per language. All patterns are
// compiled once at construction; Resolve performs no I/O and never fails —
// the failure mode is no substitution.
type Resolver struct {
	kinds []compiledKind
}

// compiledKind carries one entity kind's lead-in matchers. Each regexp
// locates "<lead-in> " occurrences; the entity name that must follow is
// checked separately, per stored pair.
type compiledKind struct {
	kind    string
	leadIns map[models.Language][]*regexp.Regexp
}

// New creates a resolver over the given kind surfaces. Passing nil uses
// DefaultKinds.
func New(kinds []KindSurface) *Resolver {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	compiled := make([]compiledKind, 0, len(kinds))
	for _, surface := range kinds {
		ck := compiledKind{
			kind:    surface.Kind,
			leadIns: make(map[models.Language][]*regexp.Regexp, len(surface.LeadIns)),
		}
		for lang, leadIns := range surface.LeadIns {
			res := make([]*regexp.Regexp, 0, len(leadIns))
			for _, leadIn := range leadIns {
				res = append(res, regexp.MustCompile(
					`(?i)(?:^|[\s"'(.,:;!?])(`+regexp.QuoteMeta(leadIn)+`[\s]+["']?)`,
				))
			}
			ck.leadIns[lang] = res
		}
		compiled = append(compiled, ck)
	}
	return &Resolver{kinds: compiled}
}

// Resolve rewrites message using the entity maps in the conversation
// snapshot. For each stored (name, id) pair and each surface pattern, at
// most the first match is substituted, so an already-substituted canonical
// id is never rewritten again by a looser pattern. Surrounding text is
// preserved; only the name token is replaced.
func (r *Resolver) Resolve(message string, snap conversation.Snapshot) string {
	if len(snap.Entities) == 0 {
		return message
	}

	languages := orderedLanguages(snap.Language)

	for _, surface := range r.kinds {
		pairs := snap.Entities[surface.kind]
		if len(pairs) == 0 {
			continue
		}
		for _, pair := range orderedPairs(pairs) {
			if pair.name == "" || pair.id == "" || strings.EqualFold(pair.name, pair.id) {
				continue
			}
			for _, lang := range languages {
				for _, re := range surface.leadIns[lang] {
					message = substituteOnce(message, re, pair.name, pair.id)
				}
			}
		}
	}
	return message
}

type entityPair struct {
	name string
	id   string
}

// orderedPairs sorts by descending name length so a longer name ("Lease
// Agreement v2") is matched before a prefix of it ("Lease Agreement"),
// then lexicographically for determinism.
func orderedPairs(pairs map[string]string) []entityPair {
	out := make([]entityPair, 0, len(pairs))
	for name, id := range pairs {
		out = append(out, entityPair{name: name, id: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) > len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}

func orderedLanguages(first models.Language) []models.Language {
	out := make([]models.Language, 0, len(langOrder))
	if first.Valid() {
		out = append(out, first)
	}
	for _, lang := range langOrder {
		if lang != first {
			out = append(out, lang)
		}
	}
	return out
}

// substituteOnce replaces the first "<leadIn> <name>" occurrence with
// "<leadIn> <id>", leaving all surrounding text intact. The name and its
// trailing boundary are checked outside the regexp: word boundaries must be
// explicit because Go's \b is ASCII-only and Hebrew letters would never
// match it.
func substituteOnce(message string, re *regexp.Regexp, name, id string) string {
	for _, loc := range re.FindAllStringSubmatchIndex(message, -1) {
		// Group 1 ends where the name must start.
		start := loc[3]
		end := start + len(name)
		if end > len(message) || !strings.EqualFold(message[start:end], name) {
			continue
		}
		if !boundaryAfter(message[end:]) {
			continue
		}
		return message[:start] + id + message[end:]
	}
	return message
}

func boundaryAfter(tail string) bool {
	if tail == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(tail)
	return unicode.IsSpace(r) || strings.ContainsRune(`"'().,:;!?`, r)
}
