package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-ai/inkwell/pkg/models"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// SQLiteStore is a Store implementation backed by SQLite, used when
// conversation state must survive restarts. Write serialization per
// conversation comes from SQLite's transaction locking.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	language   TEXT NOT NULL DEFAULT 'en',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_entities (
	conversation_id TEXT NOT NULL,
	kind            TEXT NOT NULL,
	name            TEXT NOT NULL,
	entity_id       TEXT NOT NULL,
	PRIMARY KEY (conversation_id, kind, name)
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	agent_id        TEXT,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages (conversation_id, created_at);
`

// NewSQLiteStore opens (or creates) a conversation database at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ensure(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, language, created_at, updated_at)
		VALUES (?, 'en', ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		id, now, now)
	return err
}

func (s *SQLiteStore) GetOrCreate(ctx context.Context, id string) (Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return Snapshot{}, ErrNotFound
	}
	if err := s.ensure(ctx, id); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{ID: id, Entities: map[string]map[string]string{}}

	var lang string
	if err := s.db.QueryRowContext(ctx,
		`SELECT language FROM conversations WHERE id = ?`, id).Scan(&lang); err != nil {
		return Snapshot{}, err
	}
	snap.Language = models.Language(lang)

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, entity_id FROM conversation_entities WHERE conversation_id = ?`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, name, entityID string
		if err := rows.Scan(&kind, &name, &entityID); err != nil {
			return Snapshot{}, err
		}
		if snap.Entities[kind] == nil {
			snap.Entities[kind] = map[string]string{}
		}
		snap.Entities[kind][name] = entityID
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) SetLanguage(ctx context.Context, id string, lang models.Language) error {
	if !lang.Valid() {
		return nil
	}
	if err := s.ensure(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET language = ?, updated_at = ? WHERE id = ?`,
		string(lang), time.Now().UTC(), id)
	return err
}

func (s *SQLiteStore) RecordEntities(ctx context.Context, id, kind string, nameToID map[string]string) error {
	if len(nameToID) == 0 {
		return nil
	}
	if err := s.ensure(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, entityID := range nameToID {
		name = strings.TrimSpace(name)
		entityID = strings.TrimSpace(entityID)
		if name == "" || entityID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_entities (conversation_id, kind, name, entity_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (conversation_id, kind, name) DO UPDATE SET entity_id = excluded.entity_id`,
			id, kind, name, entityID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LookupEntities(ctx context.Context, id, kind string) (map[string]string, error) {
	out := map[string]string{}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, entity_id FROM conversation_entities
		WHERE conversation_id = ? AND kind = ?`, id, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, entityID string
		if err := rows.Scan(&name, &entityID); err != nil {
			return nil, err
		}
		out[name] = entityID
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, id string, msg *models.Message) error {
	if msg == nil {
		return nil
	}
	if err := s.ensure(ctx, id); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.ConversationID = id

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, agent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, id, string(msg.Role), msg.Content, msg.AgentID, msg.CreatedAt)
	return err
}

func (s *SQLiteStore) History(ctx context.Context, id string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = maxMessagesPerConversation
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, agent_id, created_at FROM (
			SELECT * FROM messages WHERE conversation_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at ASC, id ASC`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		msg := &models.Message{ConversationID: id}
		var role string
		var agentID sql.NullString
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &agentID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = models.Role(role)
		msg.AgentID = agentID.String
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
