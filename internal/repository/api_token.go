package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedesk/internal/domain"
)

type APITokenRepository struct {
	db *sql.DB
}

func NewAPITokenRepository(db *sql.DB) *APITokenRepository {
	return &APITokenRepository{db: db}
}

// FindByPlainToken resolves a bearer token by its SHA-256 hash. Only
// unexpired tokens match; the plain token is never stored.
func (r *APITokenRepository) FindByPlainToken(ctx context.Context, plainToken string) (*domain.APIToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	sum := sha256.Sum256([]byte(plainToken))
	hashStr := fmt.Sprintf("%x", sum)

	var t domain.APIToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, expires_at
		FROM api_tokens
		WHERE token_hash = $1
		  AND (expires_at IS NULL OR expires_at > $2)`,
		hashStr, time.Now(),
	).Scan(&t.ID, &t.TokenHash, &t.UserID, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("token not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
