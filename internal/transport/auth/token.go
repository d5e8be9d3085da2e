package auth

import (
	"context"
	"fmt"
	"time"

	"healthops-dashboard/internal/domain"

	"go.uber.org/zap"
)

type TokenFinder interface {
	FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error)
	TouchLastUsed(ctx context.Context, id int64) error
}

// PersonalTokenVerifier accepts long-lived "<id>|<secret>" API tokens.
type PersonalTokenVerifier struct {
	tokens TokenFinder
	users  UserLookup
	logger *zap.Logger
	now    func() time.Time
}

func NewPersonalTokenVerifier(tokens TokenFinder, users UserLookup, logger *zap.Logger) *PersonalTokenVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalTokenVerifier{tokens: tokens, users: users, logger: logger, now: time.Now}
}

func (v *PersonalTokenVerifier) Verify(ctx context.Context, token string) (domain.Actor, error) {
	pat, err := v.tokens.FindTokenByPlainToken(ctx, token)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if pat.ExpiresAt != nil && pat.ExpiresAt.Before(v.now()) {
		return domain.Actor{}, fmt.Errorf("%w: token expired at %s", ErrInvalidToken, pat.ExpiresAt.Format(time.RFC3339))
	}

	actor, err := actorFor(ctx, v.users, pat.UserUID)
	if err != nil {
		return domain.Actor{}, err
	}
	if err := v.tokens.TouchLastUsed(ctx, pat.ID); err != nil {
		v.logger.Warn("touch token", zap.Int64("token_id", pat.ID), zap.Error(err))
	}
	return actor, nil
}
