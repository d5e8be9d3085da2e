package auth

import (
	"context"
	"fmt"

	"healthops-dashboard/internal/domain"

	fbauth "firebase.google.com/go/v4/auth"
)

// IDTokenVerifier is implemented by *fbauth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens. The role comes from the user's profile, not
// from the token.
type FirebaseVerifier struct {
	tokens IDTokenVerifier
	users  UserLookup
}

func NewFirebaseVerifier(tokens IDTokenVerifier, users UserLookup) *FirebaseVerifier {
	return &FirebaseVerifier{tokens: tokens, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (domain.Actor, error) {
	t, err := v.tokens.VerifyIDToken(ctx, token)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return actorFor(ctx, v.users, t.UID)
}
