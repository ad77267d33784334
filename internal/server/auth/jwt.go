package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSigningKeyLength is the shortest HMAC secret accepted, in bytes.
const MinSigningKeyLength = 32

// Token defaults applied when the configuration leaves a field empty.
const (
	DefaultIssuer      = "BookAPI"
	DefaultAudience    = "BookAPIUsers"
	DefaultTokenExpiry = 60 * time.Minute
)

var (
	ErrSigningKeyMissing  = errors.New("signing key is not configured")
	ErrSigningKeyTooShort = fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
)

// TokenConfig is the immutable input of a TokenIssuer.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	Expiry     time.Duration
}

// Claims is the identity carried by a bearer token. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenIssuer signs and validates HS256 bearer tokens. It is safe for
// concurrent use; nothing changes after construction.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

// IssuerOption customises a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(t *TokenIssuer) {
		t.now = now
	}
}

// NewTokenIssuer validates cfg and builds an issuer. A missing or short key
// is an error the caller must treat as fatal.
func NewTokenIssuer(cfg TokenConfig, opts ...IssuerOption) (*TokenIssuer, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrSigningKeyMissing
	}
	if len(cfg.SigningKey) < MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort
	}

	t := &TokenIssuer{
		key:      append([]byte(nil), cfg.SigningKey...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.Expiry,
		now:      time.Now,
	}
	if t.issuer == "" {
		t.issuer = DefaultIssuer
	}
	if t.audience == "" {
		t.audience = DefaultAudience
	}
	if t.expiry <= 0 {
		t.expiry = DefaultTokenExpiry
	}

	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Expiry returns the configured token lifetime.
func (t *TokenIssuer) Expiry() time.Duration {
	return t.expiry
}

// Issue signs a token for user valid for the configured expiry.
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		UserName: user.UserName,
		Email:    user.Email,
	})

	tokenString, err := token.SignedString(t.key)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Validate verifies signature, expiry, issuer and audience and returns the
// claims. Failures match one of common.ErrMalformedToken,
// common.ErrBadSignature, common.ErrTokenExpired or common.ErrIssuerMismatch.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	if err := t.verifySignature(tokenString); err != nil {
		return nil, err
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrMalformedToken
	}

	return claims, nil
}

// verifySignature checks the HS256 MAC over the raw header and payload
// segments before anything is decoded, so a change to any byte of a
// well-formed token reports ErrBadSignature.
func (t *TokenIssuer) verifySignature(tokenString string) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: token has %d segments", common.ErrMalformedToken, len(parts))
	}

	var sig []byte
	for i, part := range parts {
		b, err := base64.RawURLEncoding.DecodeString(part)
		if err != nil {
			return fmt.Errorf("%w: segment %d: %v", common.ErrMalformedToken, i, err)
		}
		sig = b
	}

	// Non-canonical encodings of the same MAC bytes count as tampering.
	if base64.RawURLEncoding.EncodeToString(sig) != parts[2] {
		return common.ErrBadSignature
	}

	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, t.key); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBadSignature, err)
	}
	return nil
}

// mapJWTError translates jwt library errors to the token failure taxonomy.
// Signature problems are checked before claim problems because the parser
// only validates claims of correctly signed tokens.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", common.ErrIssuerMismatch, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
}
