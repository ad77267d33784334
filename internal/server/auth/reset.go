package auth

import (
	"crypto/subtle"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/server/models"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes         = 32 // 256 bits; collisions are not checked against the store
	DefaultResetTokenExpiry = 24 * time.Hour
)

// ResetTokenManager issues and checks single-use password reset tokens.
type ResetTokenManager struct {
	expiry time.Duration
	now    func() time.Time
}

// NewResetTokenManager creates a manager whose tokens live for expiry
// (DefaultResetTokenExpiry when zero or negative).
func NewResetTokenManager(expiry time.Duration, opts ...ResetOption) *ResetTokenManager {
	if expiry <= 0 {
		expiry = DefaultResetTokenExpiry
	}
	m := &ResetTokenManager{expiry: expiry, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ResetOption customises a ResetTokenManager.
type ResetOption func(*ResetTokenManager)

// WithResetClock replaces time.Now.
func WithResetClock(now func() time.Time) ResetOption {
	return func(m *ResetTokenManager) {
		m.now = now
	}
}

// Expiry returns the token lifetime.
func (m *ResetTokenManager) Expiry() time.Duration {
	return m.expiry
}

// Generate returns a fresh token: ResetTokenBytes from crypto/rand, URL-safe
// base64 without padding.
func (m *ResetTokenManager) Generate() (string, error) {
	token, err := common.MakeRandBase64String(ResetTokenBytes)
	if err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}
	return token, nil
}

// IssueFor attaches a new token to user and returns it with its expiry.
// The caller persists the user.
func (m *ResetTokenManager) IssueFor(user *models.User) (string, time.Time, error) {
	token, err := m.Generate()
	if err != nil {
		return "", time.Time{}, err
	}
	expiry := m.now().Add(m.expiry)

	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	return token, expiry, nil
}

// Validate reports whether supplied is the user's pending token and it has
// not expired. Both checks always run so mismatch and expiry cost the same.
func (m *ResetTokenManager) Validate(user *models.User, supplied string) bool {
	if !user.HasPendingReset() || supplied == "" {
		return false
	}
	match := subtle.ConstantTimeCompare([]byte(*user.ResetToken), []byte(supplied))
	fresh := 0
	if !m.now().After(*user.ResetTokenExpiry) {
		fresh = 1
	}
	return match&fresh == 1
}

// Clear drops the pending token so it cannot be replayed.
func (m *ResetTokenManager) Clear(user *models.User) {
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
}
