package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/dbx"
	"github.com/dmitrijs2005/bookapi/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

const pgSelectUser = `SELECT id, username, email, password_hash, mobile, reset_token, reset_token_expiry, created_at
		 FROM users`

var pgConstraintFields = map[string]string{
	"users_username_key": FieldUserName,
	"users_email_key":    FieldEmail,
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, username, email, password_hash, mobile, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Mobile, user.CreatedAt)
	if err != nil {
		return pgWriteError(err, "create", user.ID)
	}

	return nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query := pgSelectUser + `
		 WHERE username = $1
		 `
	return r.getOne(ctx, "get_by_login", query, userName)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := pgSelectUser + `
		 WHERE email = $1
		 `
	return r.getOne(ctx, "get_by_email", query, email)
}

func (r *PostgresRepository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query := pgSelectUser + `
		 WHERE reset_token = $1 AND reset_token_expiry > $2
		 FOR UPDATE
		 `
	return r.getOne(ctx, "get_by_reset_token", query, token, now)
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, password_hash = $4, mobile = $5,
		     reset_token = $6, reset_token_expiry = $7
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Mobile,
		user.ResetToken, user.ResetTokenExpiry)
	if err != nil {
		return pgWriteError(err, "update", user.ID)
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

func (r *PostgresRepository) getOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var (
		user   models.User
		token  sql.NullString
		expiry sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.Mobile,
		&token, &expiry, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, oops.Code("USER_STORE_QUERY_FAILED").With("operation", op).Wrapf(err, "db error")
	}

	if token.Valid && expiry.Valid {
		user.ResetToken = &token.String
		user.ResetTokenExpiry = &expiry.Time
	}

	return &user, nil
}

func pgWriteError(err error, op, userID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if field, ok := pgConstraintFields[pgErr.ConstraintName]; ok {
			return &common.DuplicateKeyError{Field: field, Err: err}
		}
	}
	return oops.Code("USER_STORE_WRITE_FAILED").
		With("operation", op).
		With("user_id", userID).
		Wrapf(err, "db error")
}
