// Package users is the account store used by the auth service. Each
// implementation is bound to a dbx.DBTX so it works the same inside and
// outside a transaction.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/server/models"
)

// Unique fields reported in common.DuplicateKeyError.
const (
	FieldUserName = "username"
	FieldEmail    = "email"
)

// Repository persists user accounts. Lookups return common.ErrorNotFound
// when nothing matches; Create and Update return *common.DuplicateKeyError
// when a unique column is violated.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByResetToken only matches tokens whose expiry is after now.
	// On Postgres the row stays locked until the surrounding transaction ends.
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
