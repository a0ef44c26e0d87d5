package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// maxMessagesPerConversation bounds stored history per conversation. Older
// messages are trimmed when the limit is exceeded.
const maxMessagesPerConversation = 1000

// MemoryStore is an in-memory Store implementation. The store-level lock
// only guards the context map; each context carries its own mutex so writes
// on one conversation never block another.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*memoryContext
}

type memoryContext struct {
	mu       sync.Mutex
	language models.Language
	entities map[string]map[string]string
	messages []*models.Message
}

// NewMemoryStore creates an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: map[string]*memoryContext{}}
}

func (s *MemoryStore) getOrCreate(id string) *memoryContext {
	s.mu.RLock()
	c, ok := s.contexts[id]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contexts[id]; ok {
		return c
	}
	c = &memoryContext{
		language: models.LangEnglish,
		entities: map[string]map[string]string{},
	}
	s.contexts[id] = c
	return c
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return Snapshot{}, ErrNotFound
	}
	c := s.getOrCreate(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:       id,
		Language: c.language,
		Entities: cloneEntities(c.entities),
	}, nil
}

func (s *MemoryStore) SetLanguage(ctx context.Context, id string, lang models.Language) error {
	if !lang.Valid() {
		return nil
	}
	c := s.getOrCreate(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
	return nil
}

func (s *MemoryStore) RecordEntities(ctx context.Context, id, kind string, nameToID map[string]string) error {
	if len(nameToID) == 0 {
		return nil
	}
	c := s.getOrCreate(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	pairs, ok := c.entities[kind]
	if !ok {
		pairs = map[string]string{}
		c.entities[kind] = pairs
	}
	for name, entityID := range nameToID {
		name = strings.TrimSpace(name)
		entityID = strings.TrimSpace(entityID)
		if name == "" || entityID == "" {
			continue
		}
		pairs[name] = entityID
	}
	return nil
}

func (s *MemoryStore) LookupEntities(ctx context.Context, id, kind string) (map[string]string, error) {
	s.mu.RLock()
	c, ok := s.contexts[id]
	s.mu.RUnlock()
	if !ok {
		return map[string]string{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.entities[kind]))
	for name, entityID := range c.entities[kind] {
		out[name] = entityID
	}
	return out, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, id string, msg *models.Message) error {
	if msg == nil {
		return nil
	}
	c := s.getOrCreate(id)
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := cloneMessage(msg)
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.ConversationID = id
	c.messages = append(c.messages, clone)
	if len(c.messages) > maxMessagesPerConversation {
		c.messages = c.messages[len(c.messages)-maxMessagesPerConversation:]
	}
	// Reflect generated fields back to the caller.
	msg.ID = clone.ID
	msg.CreatedAt = clone.CreatedAt
	msg.ConversationID = id
	return nil
}

func (s *MemoryStore) History(ctx context.Context, id string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	c, ok := s.contexts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*models.Message, len(msgs))
	for i, m := range msgs {
		out[i] = cloneMessage(m)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
