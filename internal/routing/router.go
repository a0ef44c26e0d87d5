// Package routing selects which agent handles a message, using a static,
// ordered, language-aware keyword table.
package routing

import (
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// DefaultAgent handles messages no descriptor claims. Selection never fails.
const DefaultAgent = "general"

// AgentDescriptor is configuration-time data for one agent: its name, the
// keyword sets that route to it per language, and the tools it is permitted
// to invoke.
type AgentDescriptor struct {
	Name     string
	Keywords map[models.Language][]string
	Tools    []string
}

// Table is an ordered agent routing table, compiled once and immutable at
// runtime. Table order is the tie-break: the first matching agent wins.
type Table struct {
	agents []AgentDescriptor
	byName map[string]*AgentDescriptor
}

// NewTable compiles a routing table from descriptors. Keyword matching is
// case-insensitive; keywords are normalized at compile time.
func NewTable(agents []AgentDescriptor) *Table {
	compiled := make([]AgentDescriptor, 0, len(agents))
	byName := make(map[string]*AgentDescriptor, len(agents))
	for _, agent := range agents {
		desc := AgentDescriptor{
			Name:     strings.TrimSpace(agent.Name),
			Keywords: map[models.Language][]string{},
			Tools:    append([]string(nil), agent.Tools...),
		}
		if desc.Name == "" {
			continue
		}
		for lang, words := range agent.Keywords {
			var normalized []string
			for _, w := range words {
				if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
					normalized = append(normalized, w)
				}
			}
			desc.Keywords[lang] = normalized
		}
		compiled = append(compiled, desc)
	}
	table := &Table{agents: compiled}
	for i := range table.agents {
		byName[table.agents[i].Name] = &table.agents[i]
	}
	table.byName = byName
	return table
}

// Select returns the name of the first agent whose keyword set for the
// given language matches the message. It is a pure function of its inputs
// and the static table; when nothing matches it returns DefaultAgent.
func (t *Table) Select(message string, lang models.Language) string {
	lowered := strings.ToLower(message)
	for _, agent := range t.agents {
		for _, keyword := range agent.Keywords[lang] {
			if strings.Contains(lowered, keyword) {
				return agent.Name
			}
		}
	}
	return DefaultAgent
}

// Defaulted reports whether Select fell through to the default agent, for
// informational logging only.
func (t *Table) Defaulted(agent string) bool {
	return agent == DefaultAgent
}

// Tools returns the tool names the given agent may invoke.
func (t *Table) Tools(agent string) []string {
	desc, ok := t.byName[agent]
	if !ok {
		return nil
	}
	return append([]string(nil), desc.Tools...)
}

// Allowed reports whether agent may invoke tool. Unknown agents may
// invoke nothing.
func (t *Table) Allowed(agent, tool string) bool {
	desc, ok := t.byName[agent]
	if !ok {
		return false
	}
	for _, name := range desc.Tools {
		if name == tool {
			return true
		}
	}
	return false
}

// Agents returns the table's agent names in order. DefaultAgent is always
// listed, whether or not a descriptor declares it.
func (t *Table) Agents() []string {
	out := make([]string, 0, len(t.agents)+1)
	for _, agent := range t.agents {
		out = append(out, agent.Name)
	}
	if _, ok := t.byName[DefaultAgent]; !ok {
		out = append(out, DefaultAgent)
	}
	return out
}
