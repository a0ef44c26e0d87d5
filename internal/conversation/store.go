// Package conversation persists per-conversation state: detected language,
// entity name-to-identifier mappings, and message history.
package conversation

import (
	"context"
	"errors"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// ErrNotFound is returned when a conversation id has no context.
var ErrNotFound = errors.New("conversation not found")

// Snapshot is a point-in-time copy of a conversation's state. Mutating a
// snapshot never affects the stored context.
type Snapshot struct {
	ID       string
	Language models.Language
	// Entities maps entity kind -> human name -> canonical identifier.
	Entities map[string]map[string]string
}

// Store is the interface for conversation persistence.
//
// Contexts are created lazily on first access and never deleted implicitly.
// Writes on a single conversation id are serialized; reads return snapshots.
type Store interface {
	// GetOrCreate returns the conversation context, creating it if absent.
	GetOrCreate(ctx context.Context, id string) (Snapshot, error)

	// SetLanguage records the detected language for the conversation.
	SetLanguage(ctx context.Context, id string, lang models.Language) error

	// RecordEntities merges name->id pairs into the conversation's entity
	// map for the given kind, overwriting on name collision.
	RecordEntities(ctx context.Context, id, kind string, nameToID map[string]string) error

	// LookupEntities returns a snapshot of the entity map for one kind.
	LookupEntities(ctx context.Context, id, kind string) (map[string]string, error)

	// AppendMessage adds a message to the conversation history.
	AppendMessage(ctx context.Context, id string, msg *models.Message) error

	// History returns up to limit most recent messages in order.
	History(ctx context.Context, id string, limit int) ([]*models.Message, error)

	// Close releases store resources.
	Close() error
}

func cloneEntities(src map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(src))
	for kind, pairs := range src {
		kindCopy := make(map[string]string, len(pairs))
		for name, id := range pairs {
			kindCopy[name] = id
		}
		out[kind] = kindCopy
	}
	return out
}

func cloneMessage(msg *models.Message) *models.Message {
	if msg == nil {
		return nil
	}
	clone := *msg
	return &clone
}
