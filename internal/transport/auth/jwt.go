package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthops-dashboard/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role domain.Role `json:"role"`
	Name string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier issues and checks HS256 tokens. The subject is the user id.
type JWTVerifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

// NewJWTVerifier builds a verifier. When users is set, the role and active flag are read from
// the stored profile on every request instead of trusting the claims.
func NewJWTVerifier(secret, issuer string, ttl time.Duration, users UserLookup) *JWTVerifier {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, ttl: ttl, users: users, now: time.Now}
}

func (v *JWTVerifier) IssueToken(actor domain.Actor) (string, time.Time, error) {
	if len(v.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	now := v.now()
	exp := now.Add(v.ttl)
	claims := Claims{
		Role: actor.Role,
		Name: actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if v.users != nil {
		return actorFor(ctx, v.users, claims.Subject)
	}
	if !claims.Role.IsValid() {
		return domain.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return domain.Actor{UID: claims.Subject, Role: claims.Role, Name: claims.Name}, nil
}
