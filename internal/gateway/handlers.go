package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell-ai/inkwell/internal/auth"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

type loginRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	DisplayName    string `json:"display_name,omitempty"`
}

type loginResponse struct {
	Token     string `json:"token"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	token, err := s.sessions.Issue(models.UserContext{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		DisplayName:    req.DisplayName,
	}, 0)
	if err != nil {
		s.countError("session", "issue")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.logger.Info("session issued", "user_id", req.UserID)
	writeJSON(w, http.StatusCreated, loginResponse{
		Token:     token.ID,
		IssuedAt:  token.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// handleLogout revokes the presented token. Revocation is idempotent, so
// an unknown or already-expired token still gets a 204.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	s.sessions.Revoke(token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	// The session, not the request body, says who is asking.
	req.Context = sessionUser(r)

	resp, err := s.chat.HandleMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			s.logger.Debug("chat request cancelled by client")
			return
		}
		s.countError("gateway", "chat")
		s.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}
	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	history, err := s.chat.History(r.Context(), conversationID, limit)
	if err != nil {
		s.countError("gateway", "history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if history == nil {
		history = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversationId": conversationID,
		"messages":       history,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	list, err := s.tools.List(r.Context())
	if err != nil {
		s.countError("gateway", "tools")
		s.logger.Error("tool listing failed", "error", err)
		writeError(w, http.StatusBadGateway, "tool service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": list})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) countError(component, errorType string) {
	if s.metrics != nil {
		s.metrics.ErrorCounter.WithLabelValues(component, errorType).Inc()
	}
}
