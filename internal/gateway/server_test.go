package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell-ai/inkwell/internal/auth"
	"github.com/inkwell-ai/inkwell/internal/session"
	"github.com/inkwell-ai/inkwell/internal/tools"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

type stubChat struct {
	lastRequest models.ChatRequest
	response    models.ChatResponse
	err         error
	history     []*models.Message
}

func (s *stubChat) HandleMessage(_ context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	s.lastRequest = req
	return s.response, s.err
}

func (s *stubChat) History(_ context.Context, _ string, _ int) ([]*models.Message, error) {
	return s.history, nil
}

type stubTools struct {
	list []tools.ToolInfo
	err  error
}

func (s *stubTools) List(context.Context) ([]tools.ToolInfo, error) {
	return s.list, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(chat *stubChat, toolLister *stubTools, jwtSecret string) (*Server, *session.Manager) {
	sessions := session.NewManager(time.Hour)
	srv := NewServer("127.0.0.1:0", Options{
		Sessions:  sessions,
		Operators: auth.NewJWTService(jwtSecret, time.Hour),
		Chat:      chat,
		Tools:     toolLister,
		Logger:    discardLogger(),
	})
	return srv, sessions
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	body := `{"user_id": "u1", "organization_id": "org1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty session token")
	}
	return resp.Token
}

func TestLoginRequiresUserID(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(`{"organization_id": "org1"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatRequiresSession(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestChatUsesSessionIdentity(t *testing.T) {
	chat := &stubChat{response: models.ChatResponse{
		Response:       "Found 1 items:\n- lease.pdf",
		ConversationID: "c1",
		Metadata:       models.ChatMetadata{Agent: "document", Language: models.LangEnglish},
	}}
	srv, _ := newTestServer(chat, &stubTools{}, "")
	token := login(t, srv.Handler())

	// The body claims to be someone else; the session wins.
	body := `{"message": "list my documents", "context": {"user_id": "intruder"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if chat.lastRequest.Context.UserID != "u1" {
		t.Errorf("user_id = %q, want session identity", chat.lastRequest.Context.UserID)
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Metadata.Agent != "document" {
		t.Errorf("agent = %q", resp.Metadata.Agent)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")
	token := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message": "  "}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")
	token := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodPost, "/api/session/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message": "hi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("chat after logout status = %d, want 401", rec.Code)
	}
}

func TestExpiredSessionSaysExpiredOnce(t *testing.T) {
	srv, sessions := newTestServer(&stubChat{}, &stubTools{}, "")
	token := login(t, srv.Handler())

	sessions.SetNowFunc(func() time.Time { return time.Now().Add(2 * time.Hour) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message": "hi"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	first := do()
	if first.Code != http.StatusUnauthorized || !bytes.Contains(first.Body.Bytes(), []byte("session expired")) {
		t.Errorf("first attempt = %d %s", first.Code, first.Body)
	}
	second := do()
	if second.Code != http.StatusUnauthorized || !bytes.Contains(second.Body.Bytes(), []byte("invalid session token")) {
		t.Errorf("second attempt = %d %s", second.Code, second.Body)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	chat := &stubChat{history: []*models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "hi"},
	}}
	srv, _ := newTestServer(chat, &stubTools{}, "")
	token := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/history?conversationId=c1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Messages []*models.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ID != "m1" {
		t.Errorf("messages = %+v", resp.Messages)
	}
}

func TestHistoryRequiresConversationID(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")
	token := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToolsRequiresOperatorJWT(t *testing.T) {
	lister := &stubTools{list: []tools.ToolInfo{{Name: "list_templates"}}}
	srv, _ := newTestServer(&stubChat{}, lister, "operator-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	operator := auth.NewJWTService("operator-secret", time.Hour)
	jwt, err := operator.Generate("ops", "Ops")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("operator status = %d: %s", rec.Code, rec.Body)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("list_templates")) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestToolsDisabledWithoutSecret(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestToolsUpstreamFailure(t *testing.T) {
	lister := &stubTools{err: fmt.Errorf("connection refused")}
	srv, _ := newTestServer(&stubChat{}, lister, "operator-secret")

	operator := auth.NewJWTService("operator-secret", time.Hour)
	jwt, _ := operator.Generate("ops", "Ops")
	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubChat{}, &stubTools{}, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
