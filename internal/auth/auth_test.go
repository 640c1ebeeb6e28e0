package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func newService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(string(hash), secret)
}

func TestLoginIssuesToken(t *testing.T) {
	s := newService(t, "hunter22")

	res, err := s.Login(context.Background(), "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), res.ExpiresAt, time.Minute)

	sub, err := s.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, EditorSubject, sub)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newService(t, "hunter22")
	_, err := s.Login(context.Background(), "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	disabled := NewService("", secret)
	_, err = disabled.Login(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	s := newService(t, "pw")

	other := NewService("", "another-secret")
	foreign, err := other.issueToken(EditorSubject)
	require.NoError(t, err)
	_, err = s.ValidateToken(foreign.Token)
	assert.Error(t, err, "signed with another secret")

	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, err := s.issueToken(EditorSubject)
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.ValidateToken(stale.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": EditorSubject})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("open sesame")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("open sesame")))
}

func protected(s *Service) http.Handler {
	return s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(SubjectFromContext(r.Context())))
	}))
}

func TestMiddleware(t *testing.T) {
	s := newService(t, "pw")
	res, err := s.Login(context.Background(), "pw")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{name: "no credentials", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "bearer", header: "Bearer " + res.Token, wantCode: http.StatusOK, wantBody: EditorSubject},
		{name: "query token", query: "?token=" + res.Token, wantCode: http.StatusOK, wantBody: EditorSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/document"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(s).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMiddlewareDisabledPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(NewService("", secret)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	h := NewHandler(newService(t, "pw"))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "ok", body: `{"password":"pw"}`, wantCode: http.StatusOK},
		{name: "wrong", body: `{"password":"nope"}`, wantCode: http.StatusUnauthorized},
		{name: "empty", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "garbage", body: `{`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var res AuthResult
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
				assert.NotEmpty(t, res.Token)
			}
		})
	}
}
