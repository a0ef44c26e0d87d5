package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Generate("ops-1", "Operator")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	subject, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if subject != "ops-1" {
		t.Errorf("subject = %q", subject)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Generate("ops-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTService("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)
	token, err := svc.Generate("ops-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewJWTService("", time.Hour)
	if svc.Enabled() {
		t.Fatal("service with empty secret reports enabled")
	}
	if _, err := svc.Generate("ops-1", ""); !errors.Is(err, ErrAuthDisabled) {
		t.Fatalf("Generate() err = %v, want ErrAuthDisabled", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(r); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRequireOperator(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, _ := svc.Generate("ops-1", "")

	var called bool
	handler := RequireOperator(svc, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	// Valid token passes.
	r := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler(w, r)
	if !called || w.Code != http.StatusOK {
		t.Fatalf("valid token: called=%v code=%d", called, w.Code)
	}

	// Missing token rejected.
	called = false
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	if called || w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: called=%v code=%d", called, w.Code)
	}

	// Disabled service rejects everything.
	disabled := RequireOperator(NewJWTService("", 0), func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with auth disabled")
	})
	w = httptest.NewRecorder()
	disabled(w, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("disabled service code = %d", w.Code)
	}
}
