package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/Darshanscodehub/CodeCollab/handlers/auth"
)

type contextKey string

const ClaimsContextKey = contextKey("claims")

// AuthJWT rejects requests without a valid bearer token and stashes the
// parsed claims in the request context.
func AuthJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ParseJWT(parts[1])
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "Invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
