package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"healthops-dashboard/internal/domain"

	"go.uber.org/zap"
)

type ctxKey string

const actorKey ctxKey = "actor"

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrInactiveUser = errors.New("user is not active")
)

// Verifier resolves a bearer token to the signed-in actor.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Actor, error)
}

// UserLookup loads the profile that carries a user's role.
type UserLookup interface {
	Get(ctx context.Context, uid string) (domain.User, error)
}

// Middleware authenticates every request with the first verifier that accepts its token. The
// token is read from the Authorization header, or from the token query parameter for websocket
// handshakes that cannot set headers.
func Middleware(logger *zap.Logger, verifiers ...Verifier) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			var lastErr error
			for _, v := range verifiers {
				actor, err := v.Verify(r.Context(), token)
				if err != nil {
					lastErr = err
					continue
				}
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
				return
			}

			logger.Debug("authentication failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Error(lastErr),
			)
			if errors.Is(lastErr, ErrInactiveUser) {
				unauthorized(w, "Account is disabled")
				return
			}
			unauthorized(w, "Unauthorized")
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error_code":401,"status":"error","message":"` + msg + `","data":null}`))
}

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func GetActor(ctx context.Context) (domain.Actor, error) {
	a, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok || a.UID == "" {
		return domain.Actor{}, errors.New("actor not found in context")
	}
	return a, nil
}

// actorFor turns a stored profile into an actor, rejecting disabled accounts.
func actorFor(ctx context.Context, users UserLookup, uid string) (domain.Actor, error) {
	u, err := users.Get(ctx, uid)
	if err != nil {
		return domain.Actor{}, err
	}
	if !u.Active {
		return domain.Actor{}, ErrInactiveUser
	}
	if !u.Role.IsValid() {
		u.Role = domain.RoleNavigator
	}
	return u.Actor(), nil
}
