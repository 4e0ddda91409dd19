package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nexerp/edge-access/internal/core/domain"
)

// MinSecretLength is the shortest HS256 secret the codec accepts.
const MinSecretLength = 32

const defaultTokenTTL = 24 * time.Hour

// identityClaims is the wire format shared by every service.
type identityClaims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	EmployeeJob string `json:"employee_job,omitempty"`
	BranchID    string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies identity tokens with a shared HMAC secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec. A short or empty secret is a configuration
// error: the process must not start with an unverifiable trust boundary.
func NewTokenCodec(secret string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: token secret must be at least %d bytes", domain.ErrInvalidConfig, MinSecretLength)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	c := &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs p. ExpiresAt on p is ignored; the codec TTL decides expiry.
func (c *TokenCodec) Issue(p domain.Principal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	now := c.now().UTC()
	claims := identityClaims{
		UserID:      p.UserID,
		Role:        string(p.Role),
		EmployeeJob: string(p.EmployeeJob),
		BranchID:    p.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks signature, expiry and payload of raw and returns the
// principal it carries.
func (c *TokenCodec) Verify(raw string) (domain.Principal, error) {
	if raw == "" {
		return domain.Principal{}, domain.ErrTokenMalformed
	}

	var claims identityClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.Principal{}, classify(err)
	}

	p := domain.Principal{
		UserID:      claims.UserID,
		Role:        domain.Role(claims.Role),
		EmployeeJob: domain.EmployeeJob(claims.EmployeeJob),
		BranchID:    claims.BranchID,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}
	if err := p.Validate(); err != nil {
		return domain.Principal{}, domain.ErrTokenMalformed
	}
	return p, nil
}

// classify folds jwt errors into the three verification kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
