package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"healthops-dashboard/internal/domain"
)

var ErrTokenNotFound = errors.New("token not found")

// PersonalAccessTokenRepository resolves long-lived API tokens of the form "<id>|<secret>".
// Only the sha256 of the secret is stored.
type PersonalAccessTokenRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPersonalAccessTokenRepository(db *sql.DB) *PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{db: db, now: time.Now}
}

func (r *PersonalAccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, ErrTokenNotFound
	}

	idStr, secret, ok := strings.Cut(plainToken, "|")
	if !ok || secret == "" {
		return nil, ErrTokenNotFound
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, ErrTokenNotFound
	}

	var pat domain.PersonalAccessToken
	err = r.db.QueryRowContext(ctx, `
		SELECT id, token, user_uid, name, expires_at
		FROM personal_access_tokens
		WHERE id = $1
		  AND (expires_at IS NULL OR expires_at > $2)`,
		id, r.now(),
	).Scan(&pat.ID, &pat.TokenHash, &pat.UserUID, &pat.Name, &pat.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if pat.TokenHash != HashToken(secret) {
		return nil, ErrTokenNotFound
	}
	return &pat, nil
}

func (r *PersonalAccessTokenRepository) TouchLastUsed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE personal_access_tokens SET last_used_at = $2 WHERE id = $1`, id, r.now())
	return err
}

func HashToken(secret string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(secret)))
}
