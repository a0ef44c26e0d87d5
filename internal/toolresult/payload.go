// Package toolresult decides whether a tool execution actually succeeded
// and extracts entity listings from its payload.
package toolresult

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// PayloadKind says which decoded form of a payload is populated.
type PayloadKind string

const (
	KindObject    PayloadKind = "object"
	KindList      PayloadKind = "list"
	KindText      PayloadKind = "text"
	KindMalformed PayloadKind = "malformed"
)

// Payload is a tool response body decoded as far as it will go. Exactly one
// of Object, List, or Text is populated for a well-formed payload; a
// malformed payload keeps only Raw.
type Payload struct {
	Raw    json.RawMessage
	Kind   PayloadKind
	Object map[string]any
	List   []any
	Text   string
}

// Decode interprets raw bytes as a tool payload. JSON objects and arrays
// are decoded structurally; anything else that is valid UTF-8 is kept as
// text. Empty or non-UTF-8 input is malformed.
func Decode(raw []byte) Payload {
	p := Payload{Raw: append(json.RawMessage(nil), raw...)}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !utf8.Valid(trimmed) {
		p.Kind = KindMalformed
		return p
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			p.Kind = KindObject
			p.Object = obj
			return p
		}
	case '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err == nil {
			p.Kind = KindList
			p.List = list
			return p
		}
	}

	// Looks like JSON but is not: a broken encoder upstream. Raw is kept
	// so the classifier can still scan it for failure markers.
	if trimmed[0] == '{' || trimmed[0] == '[' {
		p.Kind = KindMalformed
		return p
	}

	p.Kind = KindText
	p.Text = string(trimmed)
	return p
}

// stringField returns the named field as a trimmed string when present.
func (p Payload) stringField(names ...string) (string, bool) {
	if p.Kind != KindObject {
		return "", false
	}
	for _, name := range names {
		if v, ok := p.Object[name]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

// boolField returns the named field when it is a JSON boolean.
func (p Payload) boolField(name string) (bool, bool) {
	if p.Kind != KindObject {
		return false, false
	}
	v, ok := p.Object[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
