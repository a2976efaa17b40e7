package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/homestock/internal/apikey"
	"github.com/dukerupert/homestock/internal/auth"
)

// APIKey extracts the caller's key from the apikey header, a bearer
// Authorization header, or the apikey query parameter (used by websocket
// clients, which cannot set headers from a browser).
func APIKey(r *http.Request) string {
	if k := r.Header.Get("apikey"); k != "" {
		return k
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if k, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(k)
		}
	}
	return r.URL.Query().Get("apikey")
}

// RequireAPIKey rejects requests whose key does not verify against secret
// or whose role does not allow want, and populates AuthContext otherwise.
func RequireAPIKey(secret string, want apikey.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := apikey.Verify(secret, APIKey(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			if !role.Allows(want) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
