package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteSendsToolAndParameters(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Write([]byte(`{"success": true, "data": {"id": "t1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	payload, err := c.Execute(context.Background(), "use_template", map[string]any{"template_id": "tmpl-guid-001"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if gotPath != "/execute" {
		t.Errorf("path = %q, want /execute", gotPath)
	}
	if gotBody["tool"] != "use_template" {
		t.Errorf("tool = %v", gotBody["tool"])
	}
	params, _ := gotBody["parameters"].(map[string]any)
	if params["template_id"] != "tmpl-guid-001" {
		t.Errorf("parameters = %v", gotBody["parameters"])
	}
	if string(payload) != `{"success": true, "data": {"id": "t1"}}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestExecuteNilParametersSendsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if string(body["parameters"]) != "{}" {
			t.Errorf("parameters = %s, want {}", body["parameters"])
		}
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	if _, err := c.Execute(context.Background(), "get_user_info", nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
}

func TestExecuteNon2xxReturnsBodyAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "upstream down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	payload, err := c.Execute(context.Background(), "list_documents", nil)
	if err == nil {
		t.Fatal("Execute() error = nil, want non-nil for 502")
	}
	if string(payload) != `{"error": "upstream down"}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, 0, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Execute(ctx, "list_documents", nil); err == nil {
		t.Fatal("Execute() error = nil, want context deadline error")
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tools" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"tools": [{"name": "list_templates", "description": "List templates"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	tools, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "list_templates" {
		t.Errorf("List() = %+v", tools)
	}
}

func TestListNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	if _, err := c.List(context.Background()); err == nil {
		t.Fatal("List() error = nil, want non-nil")
	}
}
