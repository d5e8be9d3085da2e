package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthops-dashboard/internal/domain"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]domain.User

func (f fakeUsers) Get(_ context.Context, uid string) (domain.User, error) {
	u, ok := f[uid]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

var users = fakeUsers{
	"admin-1": {UID: "admin-1", Name: "Asha", Role: domain.RoleAdmin, Active: true},
	"nav-1":   {UID: "nav-1", Name: "Ravi", Role: domain.RoleNavigator, Active: true},
	"gone":    {UID: "gone", Name: "Old", Role: domain.RoleNavigator, Active: false},
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := GetActor(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(a.UID + ":" + string(a.Role)))
	})
}

func TestMiddleware_JWTHeaderAndQuery(t *testing.T) {
	v := NewJWTVerifier("secret", "healthops", time.Hour, users)
	token, _, err := v.IssueToken(domain.Actor{UID: "nav-1", Role: domain.RoleNavigator})
	require.NoError(t, err)

	h := Middleware(nil, v)(echoActor())

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nav-1:navigator", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Rejects(t *testing.T) {
	v := NewJWTVerifier("secret", "healthops", time.Hour, users)
	h := Middleware(nil, v)(echoActor())

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error_code":401`)
		})
	}
}

func TestMiddleware_InactiveUser(t *testing.T) {
	v := NewJWTVerifier("secret", "", time.Hour, users)
	token, _, err := v.IssueToken(domain.Actor{UID: "gone", Role: domain.RoleNavigator})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Middleware(nil, v)(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account is disabled")
}

func TestMiddleware_FallsThroughVerifiers(t *testing.T) {
	jwtV := NewJWTVerifier("secret", "", time.Hour, users)
	patV := NewPersonalTokenVerifier(&fakeTokens{}, users, nil)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer 7|plain")
	rec := httptest.NewRecorder()
	Middleware(nil, jwtV, patV)(echoActor()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1:admin", rec.Body.String())
}

func TestJWTVerifier_ExpiredAndWrongIssuer(t *testing.T) {
	issued := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	v := NewJWTVerifier("secret", "healthops", time.Hour, nil)
	v.now = func() time.Time { return issued }
	token, exp, err := v.IssueToken(domain.Actor{UID: "nav-1", Role: domain.RoleNavigator, Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), exp)

	actor, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UID: "nav-1", Role: domain.RoleNavigator, Name: "Ravi"}, actor)

	v.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTVerifier("secret", "someone-else", time.Hour, nil)
	other.now = func() time.Time { return issued }
	_, err = other.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongKey := NewJWTVerifier("other-secret", "healthops", time.Hour, nil)
	wrongKey.now = func() time.Time { return issued }
	_, err = wrongKey.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type fakeIDTokens struct{}

func (fakeIDTokens) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if idToken != "good" {
		return nil, errors.New("bad signature")
	}
	return &fbauth.Token{UID: "admin-1"}, nil
}

func TestFirebaseVerifier(t *testing.T) {
	v := NewFirebaseVerifier(fakeIDTokens{}, users)

	actor, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())
	assert.Equal(t, "Asha", actor.Name)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type fakeTokens struct {
	expired bool
	touched []int64
}

func (f *fakeTokens) FindTokenByPlainToken(_ context.Context, plain string) (*domain.PersonalAccessToken, error) {
	if plain != "7|plain" {
		return nil, errors.New("token not found")
	}
	pat := &domain.PersonalAccessToken{ID: 7, UserUID: "admin-1"}
	if f.expired {
		past := time.Now().Add(-time.Minute)
		pat.ExpiresAt = &past
	}
	return pat, nil
}

func (f *fakeTokens) TouchLastUsed(_ context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return nil
}

func TestPersonalTokenVerifier(t *testing.T) {
	tokens := &fakeTokens{}
	v := NewPersonalTokenVerifier(tokens, users, nil)

	actor, err := v.Verify(context.Background(), "7|plain")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", actor.UID)
	assert.Equal(t, []int64{7}, tokens.touched)

	tokens.expired = true
	_, err = v.Verify(context.Background(), "7|plain")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
