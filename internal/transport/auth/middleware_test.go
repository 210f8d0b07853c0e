package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedesk/internal/domain"
)

type fakeTokens struct {
	tokens map[string]*domain.APIToken
}

func (f *fakeTokens) FindByPlainToken(ctx context.Context, plainToken string) (*domain.APIToken, error) {
	t, ok := f.tokens[plainToken]
	if !ok {
		return nil, errors.New("token not found")
	}
	return t, nil
}

func newAuthedServer(resolver TokenResolver) (http.Handler, *int64) {
	var seenUserID int64

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r.Context())
		if err != nil {
			http.Error(w, "no user in context", http.StatusInternalServerError)
			return
		}
		seenUserID = userID
		w.WriteHeader(http.StatusOK)
	})

	return TokenMiddleware(resolver)(next), &seenUserID
}

func TestTokenMiddleware_BearerHeader(t *testing.T) {
	resolver := &fakeTokens{tokens: map[string]*domain.APIToken{
		"secret": {ID: 1, UserID: 42},
	}}
	handler, seen := newAuthedServer(resolver)

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != 42 {
		t.Fatalf("expected user 42 in context, got %d", *seen)
	}
}

func TestTokenMiddleware_QueryParamFallback(t *testing.T) {
	resolver := &fakeTokens{tokens: map[string]*domain.APIToken{
		"secret": {ID: 1, UserID: 7},
	}}
	handler, seen := newAuthedServer(resolver)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=secret", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != 7 {
		t.Fatalf("expected user 7 in context, got %d", *seen)
	}
}

func TestTokenMiddleware_Rejections(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	resolver := &fakeTokens{tokens: map[string]*domain.APIToken{
		"stale": {ID: 1, UserID: 7, ExpiresAt: &expired},
	}}
	handler, _ := newAuthedServer(resolver)

	tests := []struct {
		name   string
		header string
		query  string
	}{
		{"no token", "", ""},
		{"unknown token", "Bearer nope", ""},
		{"expired token", "Bearer stale", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/students"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestGetUserID_MissingFromContext(t *testing.T) {
	if _, err := GetUserID(context.Background()); err == nil {
		t.Fatal("expected error for empty context")
	}
}
