package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	apperrors "github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestVerifier(t *testing.T, cfg config.AuthConfig, opts ...Option) *Verifier {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	v, err := NewVerifier(cfg, opts...)
	require.NoError(t, err)
	return v
}

func TestNewVerifier_ShortSecret(t *testing.T) {
	t.Parallel()
	_, err := NewVerifier(config.AuthConfig{JWTSecret: "short"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t, config.AuthConfig{Issuer: "labelscan", Audience: "labelscan-api"})

	raw, err := v.Issue("user-42", time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "labelscan", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestValidateToken_Failures(t *testing.T) {
	t.Parallel()
	base := newTestVerifier(t, config.AuthConfig{Issuer: "labelscan", Audience: "labelscan-api"})

	sign := func(method jwt.SigningMethod, key interface{}, rc jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(method, rc).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	good := jwt.RegisteredClaims{Subject: "u", Issuer: "labelscan", Audience: jwt.ClaimStrings{"labelscan-api"}, ExpiresAt: future}

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "  ", ErrTokenMalformed},
		{"garbage", "not.a.jwt", ErrTokenMalformed},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("another-secret-value-123"), good), ErrTokenInvalidSignature},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, good), ErrTokenInvalidSignature},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: "u", Issuer: "labelscan", Audience: jwt.ClaimStrings{"labelscan-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}), ErrTokenExpired},
		{"no exp", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: "u", Issuer: "labelscan", Audience: jwt.ClaimStrings{"labelscan-api"},
		}), nil},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: "u", Issuer: "someone", Audience: jwt.ClaimStrings{"labelscan-api"}, ExpiresAt: future,
		}), ErrTokenInvalidIssuer},
		{"wrong audience", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: "u", Issuer: "labelscan", Audience: jwt.ClaimStrings{"other"}, ExpiresAt: future,
		}), ErrTokenInvalidAudience},
		{"no subject", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Issuer: "labelscan", Audience: jwt.ClaimStrings{"labelscan-api"}, ExpiresAt: future,
		}), ErrTokenMissingSubject},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := base.ValidateToken(context.Background(), tc.raw)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateToken_Leeway(t *testing.T) {
	t.Parallel()
	issuedAt := time.Now()
	signer := newTestVerifier(t, config.AuthConfig{}, WithClock(func() time.Time { return issuedAt }))
	raw, err := signer.Issue("u", time.Minute)
	require.NoError(t, err)

	late := func() time.Time { return issuedAt.Add(time.Minute + 10*time.Second) }
	lenient := newTestVerifier(t, config.AuthConfig{}, WithClock(late), WithLeeway(30*time.Second))
	_, err = lenient.ValidateToken(context.Background(), raw)
	assert.NoError(t, err)

	strict := newTestVerifier(t, config.AuthConfig{}, WithClock(late), WithLeeway(0))
	_, err = strict.ValidateToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssue_NoSubject(t *testing.T) {
	t.Parallel()
	_, err := newTestVerifier(t, config.AuthConfig{}).Issue("", time.Minute)
	assert.ErrorIs(t, err, ErrTokenMissingSubject)
}

//Personal.AI order the ending
