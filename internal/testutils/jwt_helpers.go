package testutils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret is a dedicated test-only secret for signing JWTs.
// This must never be used in production.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// TestTokenLifetime is the default lifetime of tokens from SignToken.
const TestTokenLifetime = 15 * time.Minute

// TokenOptions customizes a token built by SignTokenWithOptions.
type TokenOptions struct {
	Secret    string
	Method    jwt.SigningMethod
	Subject   string
	UserID    string
	Issuer    string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// SignToken returns an HS256 token for userID, valid from now for
// TestTokenLifetime, signed with TestJWTSecret.
func SignToken(t testing.TB, userID uuid.UUID, now time.Time) string {
	t.Helper()
	return SignTokenWithOptions(t, TokenOptions{
		Subject:   userID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(TestTokenLifetime),
	})
}

// SignTokenWithOptions signs a token built from opts. Zero fields are
// left out of the claims; Secret and Method default to TestJWTSecret and
// HS256.
func SignTokenWithOptions(t testing.TB, opts TokenOptions) string {
	t.Helper()

	if opts.Secret == "" {
		opts.Secret = TestJWTSecret
	}
	if opts.Method == nil {
		opts.Method = jwt.SigningMethodHS256
	}

	claims := jwt.MapClaims{"jti": uuid.NewString()}
	if opts.Subject != "" {
		claims["sub"] = opts.Subject
	}
	if opts.UserID != "" {
		claims["uid"] = opts.UserID
	}
	if opts.Issuer != "" {
		claims["iss"] = opts.Issuer
	}
	if !opts.IssuedAt.IsZero() {
		claims["iat"] = jwt.NewNumericDate(opts.IssuedAt)
	}
	if !opts.NotBefore.IsZero() {
		claims["nbf"] = jwt.NewNumericDate(opts.NotBefore)
	}
	if !opts.ExpiresAt.IsZero() {
		claims["exp"] = jwt.NewNumericDate(opts.ExpiresAt)
	}

	signed, err := jwt.NewWithClaims(opts.Method, claims).SignedString([]byte(opts.Secret))
	require.NoError(t, err, "failed to sign test token")
	return signed
}
