package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/dbx"
	"github.com/dmitrijs2005/bookapi/internal/server/models"
	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTimeLayout is fixed width so stored values order lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSelectUser = `SELECT id, username, email, password_hash, mobile, reset_token, reset_token_expiry, created_at
		 FROM users`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, username, email, password_hash, mobile, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Mobile, formatSQLiteTime(user.CreatedAt))
	if err != nil {
		return sqliteWriteError(err, "create", user.ID)
	}

	return nil
}

func (r *SQLiteRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, "get_by_login", sqliteSelectUser+` WHERE username = ?`, userName)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get_by_email", sqliteSelectUser+` WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return r.getOne(ctx, "get_by_reset_token",
		sqliteSelectUser+` WHERE reset_token = ? AND reset_token_expiry > ?`,
		token, formatSQLiteTime(now))
}

func (r *SQLiteRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = ?, email = ?, password_hash = ?, mobile = ?,
		     reset_token = ?, reset_token_expiry = ?
		 WHERE id = ?
		 `

	var expiry any
	if user.ResetTokenExpiry != nil {
		expiry = formatSQLiteTime(*user.ResetTokenExpiry)
	}

	res, err := r.db.ExecContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, user.Mobile,
		user.ResetToken, expiry, user.ID)
	if err != nil {
		return sqliteWriteError(err, "update", user.ID)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("USER_STORE_QUERY_FAILED").With("operation", "update").Wrapf(err, "db error")
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var (
		user      models.User
		token     sql.NullString
		expiry    sql.NullString
		createdAt string
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.Mobile,
		&token, &expiry, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, oops.Code("USER_STORE_QUERY_FAILED").With("operation", op).Wrapf(err, "db error")
	}

	if user.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, oops.Code("USER_STORE_CORRUPT_ROW").With("user_id", user.ID).Wrapf(err, "parse created_at")
	}

	if token.Valid && expiry.Valid {
		t, err := time.Parse(sqliteTimeLayout, expiry.String)
		if err != nil {
			return nil, oops.Code("USER_STORE_CORRUPT_ROW").With("user_id", user.ID).Wrapf(err, "parse reset_token_expiry")
		}
		user.ResetToken = &token.String
		user.ResetTokenExpiry = &t
	}

	return &user, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// sqliteWriteError maps "UNIQUE constraint failed: users.<column>" to a
// DuplicateKeyError.
func sqliteWriteError(err error, op, userID string) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) && isUniqueCode(sqlErr.Code()) {
		msg := sqlErr.Error()
		switch {
		case strings.Contains(msg, "users.username"):
			return &common.DuplicateKeyError{Field: FieldUserName, Err: err}
		case strings.Contains(msg, "users.email"):
			return &common.DuplicateKeyError{Field: FieldEmail, Err: err}
		}
	}
	return oops.Code("USER_STORE_WRITE_FAILED").
		With("operation", op).
		With("user_id", userID).
		Wrapf(err, "db error")
}

func isUniqueCode(code int) bool {
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
}
