package toolresult

import (
	"strings"
)

// toolEntityKinds maps tool names to the entity kind their payloads carry.
// Tools absent from the map contribute no entities.
var toolEntityKinds = map[string]string{
	"list_templates":    "template",
	"create_template":   "template",
	"use_template":      "template",
	"list_documents":    "document",
	"upload_document":   "document",
	"get_document_info": "document",
	"list_contacts":     "contact",
	"add_contact":       "contact",
}

// nameFields and idFields are tried in order against each payload item.
var (
	nameFields = []string{"name", "title", "filename", "display_name", "email"}
	idFields   = []string{"id", "guid", "template_id", "document_id", "contact_id", "uuid"}
)

// ExtractEntities pulls (name -> id) pairs out of a successful tool
// payload, keyed by entity kind. Listing tools yield one pair per item;
// creation tools yield the single created entity. Items missing a usable
// name or id are skipped, never guessed at.
func ExtractEntities(toolName string, payload Payload) map[string]map[string]string {
	kind, ok := toolEntityKinds[toolName]
	if !ok {
		return nil
	}

	pairs := map[string]string{}
	for _, item := range payloadItems(payload) {
		name, id := itemNameID(item)
		if name == "" || id == "" || strings.EqualFold(name, id) {
			continue
		}
		pairs[name] = id
	}
	if len(pairs) == 0 {
		return nil
	}
	return map[string]map[string]string{kind: pairs}
}

// payloadItems flattens a payload into candidate entity objects: a bare
// list, an object's embedded list under a conventional field, or the
// object itself.
func payloadItems(payload Payload) []map[string]any {
	var items []map[string]any
	appendItem := func(v any) {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}

	switch payload.Kind {
	case KindList:
		for _, v := range payload.List {
			appendItem(v)
		}
	case KindObject:
		for _, field := range []string{"items", "data", "results", "templates", "documents", "contacts"} {
			if list, ok := payload.Object[field].([]any); ok {
				for _, v := range list {
					appendItem(v)
				}
				return items
			}
		}
		items = append(items, payload.Object)
	}
	return items
}

func itemNameID(item map[string]any) (name, id string) {
	pick := func(fields []string) string {
		for _, f := range fields {
			if s, ok := item[f].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	return pick(nameFields), pick(idFields)
}
