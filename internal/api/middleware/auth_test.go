package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/service/auth"
)

type stubValidator struct {
	claims   *auth.Claims
	err      error
	gotToken string
}

func (v *stubValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	v.gotToken = token
	return v.claims, v.err
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		claims     *auth.Claims
		err        error
		wantStatus int
		wantError  string
	}{
		{"valid token", "Bearer good", &auth.Claims{UserID: userID}, nil, http.StatusOK, ""},
		{"lowercase scheme", "bearer good", &auth.Claims{UserID: userID}, nil, http.StatusOK, ""},
		{"missing header", "", nil, nil, http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic abc", nil, nil, http.StatusUnauthorized, "Invalid authorization format"},
		{"empty token", "Bearer ", nil, nil, http.StatusUnauthorized, "Invalid authorization format"},
		{"expired", "Bearer old", nil, fmt.Errorf("%w: exp", auth.ErrExpiredToken), http.StatusUnauthorized, "Token expired"},
		{"invalid", "Bearer bad", nil, auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"no subject", "Bearer anon", nil, auth.ErrMissingSubject, http.StatusUnauthorized, "Invalid token"},
		{"validator failure", "Bearer x", nil, errors.New("boom"), http.StatusInternalServerError, "Authentication error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotUser uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = shared.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			m := NewAuthMiddleware(&stubValidator{claims: tc.claims, err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			m.Authenticate(next).ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, userID, gotUser)
				return
			}
			assert.Equal(t, uuid.Nil, gotUser)
			assert.Contains(t, rec.Body.String(), tc.wantError)
		})
	}
}

func TestNewAuthMiddlewarePanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAuthMiddleware(nil) })
}
