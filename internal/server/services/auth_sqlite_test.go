package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/logging"
	"github.com/dmitrijs2005/bookapi/internal/server/auth"
	"github.com/dmitrijs2005/bookapi/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type sqliteFixture struct {
	svc      *AuthService
	db       *sql.DB
	notifier *captureNotifier
	clock    *testClock
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open(repomanager.DriverSQLite, filepath.Join(t.TempDir(), "bookapi.db"))
	require.NoError(t, err)
	// One connection serialises writers the way a real SQLite deployment does.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.New(repomanager.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{SigningKey: testKey}, auth.WithClock(clock.Now))
	require.NoError(t, err)

	f := &sqliteFixture{db: db, notifier: &captureNotifier{}, clock: clock}
	f.svc, err = NewAuthService(db, rm, auth.NewBcryptHasher(bcrypt.MinCost), tokens,
		auth.NewResetTokenManager(0, auth.WithResetClock(clock.Now)),
		f.notifier, logging.NewDiscardLogger(), WithClock(clock.Now))
	require.NoError(t, err)
	return f
}

func TestSQLite_AliceScenario(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterRequest{UserName: "alice", Password: "P@ssw0rd1", Email: "alice@example.com"})
	require.NoError(t, err)
	claims, err := f.svc.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, "alice@example.com", claims.Email)

	login, err := f.svc.Login(ctx, "alice", "P@ssw0rd1")
	require.NoError(t, err)
	loginClaims, err := f.svc.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID(), loginClaims.UserID())

	_, err = f.svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	token := f.notifier.last(t).Token

	reset := ResetPasswordRequest{Token: token, Email: "alice@example.com", NewPassword: "N3w!"}
	require.NoError(t, f.svc.ResetPassword(ctx, reset))

	_, err = f.svc.Login(ctx, "alice", "P@ssw0rd1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "alice", "N3w!")
	require.NoError(t, err)

	reset.NewPassword = "again"
	require.ErrorIs(t, f.svc.ResetPassword(ctx, reset), common.ErrInvalidOrExpiredToken, "tokens are single use")
}

func TestSQLite_ResetTokenExpires(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{UserName: "alice", Password: "P@ssw0rd1", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	token := f.notifier.last(t).Token

	f.clock.Advance(25 * time.Hour)

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Email: "alice@example.com", NewPassword: "N3w!"})
	require.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestSQLite_NewResetRequestReplacesToken(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{UserName: "alice", Password: "P@ssw0rd1", Email: "alice@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	first := f.notifier.last(t).Token
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	second := f.notifier.last(t).Token
	require.NotEqual(t, first, second)

	err = f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: first, Email: "alice@example.com", NewPassword: "N3w!"})
	require.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordRequest{Token: second, Email: "alice@example.com", NewPassword: "N3w!"}))
}

func TestSQLite_ConcurrentDuplicateRegistration(t *testing.T) {
	f := newSQLiteFixture(t)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.Register(ctx, RegisterRequest{
				UserName: "bob",
				Password: "hunter22",
				Email:    fmt.Sprintf("bob%d@example.com", i),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, common.ErrUsernameTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'bob'`).Scan(&n))
	assert.Equal(t, 1, n)
}
