package http

import (
	"net/http"
	"strings"

	"devicepool-backend/internal/security"
)

// managerOnly guards admin routes with a bearer token check.
func managerOnly(tokens security.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
			return
		}
		if claims.Role != "manager" {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "manager role required"})
			return
		}
		next(w, r)
	}
}
