// Package services contains server-side business logic. This file implements
// AuthService: registration, login, bearer token validation and the password
// reset flow.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/dbx"
	"github.com/dmitrijs2005/bookapi/internal/logging"
	"github.com/dmitrijs2005/bookapi/internal/server/auth"
	"github.com/dmitrijs2005/bookapi/internal/server/models"
	"github.com/dmitrijs2005/bookapi/internal/server/notify"
	"github.com/dmitrijs2005/bookapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookapi/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dummyPassword is hashed once at startup. Logins for unknown users verify
// against that hash so they cost the same as a wrong password.
const dummyPassword = "bookapi-timing-equaliser"

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	UserName string
	Password string
	Email    string
	Mobile   string
}

// ResetPasswordRequest is the input of ResetPassword.
type ResetPasswordRequest struct {
	Token       string
	Email       string
	NewPassword string
}

// AuthResult is returned by successful Register and Login calls.
type AuthResult struct {
	Token    string
	UserName string
	Email    string
}

// AuthService provides the account operations. It is safe for concurrent use;
// all state lives in the store.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenIssuer
	resets      *auth.ResetTokenManager
	notifier    notify.Notifier
	logger      logging.Logger
	now         func() time.Time
	dummyHash   string
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithClock replaces time.Now for creation timestamps and reset expiry checks.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService wires the service. It hashes a dummy password up front, so
// construction costs one bcrypt round.
func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	resets *auth.ResetTokenManager,
	notifier notify.Notifier,
	logger logging.Logger,
	opts ...AuthOption,
) (*AuthService, error) {
	s := &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		resets:      resets,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Register creates an account and returns a token for it.
//
// Uniqueness is pre-checked for a clear error, but the store's unique
// constraints decide races: a losing concurrent Register gets the same
// ErrUsernameTaken or ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetUserByLogin(ctx, req.UserName); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.internal(ctx, "register: username lookup failed", err)
	}

	if _, err := repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.internal(ctx, "register: email lookup failed", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.internal(ctx, "register: hash password", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		CreatedAt:    s.now().UTC(),
	}

	if err := repo.Create(ctx, user); err != nil {
		var dup *common.DuplicateKeyError
		if errors.As(err, &dup) {
			if dup.Field == users.FieldEmail {
				return nil, common.ErrEmailTaken
			}
			return nil, common.ErrUsernameTaken
		}
		return nil, s.internal(ctx, "register: create user", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, s.internal(ctx, "register: issue token", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.UserName)

	return &AuthResult{Token: token, UserName: user.UserName, Email: user.Email}, nil
}

// Login checks credentials and returns a fresh token. Unknown users and wrong
// passwords are indistinguishable: same error, same bcrypt work.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "login: user lookup failed", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug(ctx, "login rejected", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, s.internal(ctx, "login: issue token", err)
	}

	return &AuthResult{Token: token, UserName: user.UserName, Email: user.Email}, nil
}

// RequestPasswordReset attaches a reset token to the account with this email
// and hands it to the notifier. The outcome is the same whether or not the
// email is registered; delivery failures are logged only.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email address is not valid", common.ErrInvalidRequest)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "password reset requested for unknown email")
			return nil
		}
		return s.internal(ctx, "reset request: user lookup failed", err)
	}

	token, expiry, err := s.resets.IssueFor(user)
	if err != nil {
		return s.internal(ctx, "reset request: generate token", err)
	}

	if err := repo.Update(ctx, user); err != nil {
		return s.internal(ctx, "reset request: store token", err)
	}

	notice := notify.ResetNotice{
		UserName:  user.UserName,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiry,
	}
	if err := s.notifier.NotifyPasswordReset(ctx, notice); err != nil {
		logging.LogError(ctx, s.logger, "reset request: notification failed", err)
	}

	s.logger.Info(ctx, "password reset token issued", "user_id", user.ID, "expires_at", expiry)
	return nil
}

// ResetPassword consumes a reset token and sets a new password. The new hash
// is computed before the row is locked; the lookup, checks and update then
// run in one transaction so a token works at most once.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Token == "" {
		return common.ErrInvalidOrExpiredToken
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return s.internal(ctx, "reset: hash password", err)
	}

	var userID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetUserByResetToken(ctx, req.Token, s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredToken
			}
			return err
		}

		if !s.resets.Validate(user, req.Token) {
			return common.ErrInvalidOrExpiredToken
		}
		if subtle.ConstantTimeCompare([]byte(user.Email), []byte(req.Email)) != 1 {
			return common.ErrInvalidRequest
		}

		user.PasswordHash = hash
		s.resets.Clear(user)
		userID = user.ID

		return repo.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredToken) || errors.Is(err, common.ErrInvalidRequest) {
			return err
		}
		return s.internal(ctx, "reset: update password", err)
	}

	s.logger.Info(ctx, "password reset completed", "user_id", userID)
	return nil
}

// ValidateToken checks a bearer token issued by Register or Login.
func (s *AuthService) ValidateToken(token string) (*auth.Claims, error) {
	return s.tokens.Validate(token)
}

// internal logs err with its oops context and returns the generic error that
// callers are allowed to see.
func (s *AuthService) internal(ctx context.Context, msg string, err error) error {
	logging.LogError(ctx, s.logger, msg, oops.With("service", "auth").Wrap(err))
	return common.ErrorInternal
}

func validateRegistration(req RegisterRequest) error {
	if strings.TrimSpace(req.UserName) == "" {
		return fmt.Errorf("%w: username is required", common.ErrInvalidRequest)
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("%w: email address is not valid", common.ErrInvalidRequest)
	}
	return validatePassword(req.Password)
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrInvalidRequest)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrInvalidRequest, auth.MaxPasswordBytes)
	}
	return nil
}
