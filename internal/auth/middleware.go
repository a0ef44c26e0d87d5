package auth

import (
	"net/http"
	"strings"
)

// BearerToken extracts the bearer token from an Authorization header.
// Returns an empty string when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireOperator wraps a handler, rejecting requests without a valid
// operator JWT. When the service is disabled the endpoint is unavailable
// rather than open.
func RequireOperator(service *JWTService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !service.Enabled() {
			http.Error(w, "operator endpoints disabled", http.StatusForbidden)
			return
		}
		token := BearerToken(r)
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := service.Validate(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
