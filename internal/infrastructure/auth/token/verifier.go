// Package token verifies and issues the HS256 bearer tokens that identify
// the owner of a scan.
package token

import (
	"context"
	stdliberrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 16

var (
	ErrTokenMalformed        = errors.New(errors.ErrCodeUnauthorized, "token malformed")
	ErrTokenExpired          = errors.New(errors.ErrCodeUnauthorized, "token expired")
	ErrTokenInvalidSignature = errors.New(errors.ErrCodeUnauthorized, "token signature invalid")
	ErrTokenInvalidIssuer    = errors.New(errors.ErrCodeUnauthorized, "token issuer invalid")
	ErrTokenInvalidAudience  = errors.New(errors.ErrCodeUnauthorized, "token audience invalid")
	ErrTokenMissingSubject   = errors.New(errors.ErrCodeUnauthorized, "token has no subject")
)

// Claims is the verified identity carried by a token.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Verifier checks HS256 tokens against a shared secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLeeway tolerates clock skew on exp/nbf/iat.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) { v.leeway = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier builds a Verifier from the auth configuration.
func NewVerifier(cfg config.AuthConfig, opts ...Option) (*Verifier, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, errors.Newf(errors.ErrCodeValidation, "jwt secret must be at least %d bytes", MinSecretLength)
	}
	v := &Verifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   30 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// ValidateToken parses raw and returns its claims.  Only HS256 is accepted,
// exp is mandatory, and iss/aud are checked when configured.
func (v *Verifier) ValidateToken(_ context.Context, raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMalformed
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &rc, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalidSignature
	}
	if rc.Subject == "" {
		return nil, ErrTokenMissingSubject
	}

	claims := &Claims{Subject: rc.Subject, Issuer: rc.Issuer}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case stdliberrors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case stdliberrors.Is(err, jwt.ErrTokenSignatureInvalid), stdliberrors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenInvalidSignature
	case stdliberrors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrTokenInvalidIssuer
	case stdliberrors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrTokenInvalidAudience
	case stdliberrors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	}
	return errors.Wrap(err, errors.ErrCodeUnauthorized, "token verification failed")
}

// Issue signs a token for subject valid for ttl.  It is used by the CLI to
// mint development tokens.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrTokenMissingSubject
	}
	now := v.now()
	rc := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.audience != "" {
		rc.Audience = jwt.ClaimStrings{v.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, rc).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to sign token")
	}
	return signed, nil
}

//Personal.AI order the ending
