package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"feedesk/internal/domain"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

type TokenResolver interface {
	FindByPlainToken(ctx context.Context, plainToken string) (*domain.APIToken, error)
}

// TokenMiddleware authenticates every request with a bearer token,
// accepting it from the Authorization header or, for websocket clients
// that cannot set headers, the token query parameter.
func TokenMiddleware(tokens TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var plain string

			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				plain = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
			if plain == "" {
				plain = r.URL.Query().Get("token")
			}
			if plain == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := tokens.FindByPlainToken(r.Context(), plain)
			if err != nil {
				log.Printf("[AUTH] token lookup failed: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, token.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, errors.New("userID not found in context")
	}
	return userID, nil
}
