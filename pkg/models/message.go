// Package models defines the core data types for Inkwell.
package models

import (
	"time"
)

// Language identifies a supported conversation language.
type Language string

const (
	LangEnglish Language = "en"
	LangHebrew  Language = "he"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	switch l {
	case LangEnglish, LangHebrew:
		return true
	}
	return false
}

// Role indicates the message author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserContext identifies the authenticated user behind a request.
type UserContext struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	DisplayName    string `json:"display_name,omitempty"`
}

// Message is a single conversation turn.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	AgentID        string    `json:"agent_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FileRef describes a file attached to a chat message. The path is
// meaningful only to the tool-execution service.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ChatRequest is the inbound chat payload consumed by the orchestrator.
type ChatRequest struct {
	Message        string      `json:"message"`
	ConversationID string      `json:"conversationId"`
	Context        UserContext `json:"context"`
	Files          []FileRef   `json:"files,omitempty"`
}

// ChatResponse is the reply returned for a chat request. Metadata always
// carries the name of the agent that handled the message.
type ChatResponse struct {
	Response       string       `json:"response"`
	ConversationID string       `json:"conversationId"`
	Metadata       ChatMetadata `json:"metadata"`
}

// ChatMetadata describes how a chat request was handled.
type ChatMetadata struct {
	Agent    string   `json:"agent"`
	Language Language `json:"language,omitempty"`
}
