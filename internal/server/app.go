// Package server assembles the BookAPI auth server: it opens the database,
// applies migrations, builds the auth primitives and serves gRPC until
// the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bookapi/internal/filex"
	"github.com/dmitrijs2005/bookapi/internal/logging"
	"github.com/dmitrijs2005/bookapi/internal/server/auth"
	"github.com/dmitrijs2005/bookapi/internal/server/config"
	"github.com/dmitrijs2005/bookapi/internal/server/notify"
	"github.com/dmitrijs2005/bookapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookapi/internal/server/services"

	gs "github.com/dmitrijs2005/bookapi/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	notifier    *notify.AsyncNotifier
	authService *services.AuthService
}

// NewApp opens the database and builds the service graph. Migrations run
// against ctx.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	if c.DatabaseDriver == repomanager.DriverSQLite {
		if path := filex.SQLiteFilePath(c.DatabaseDSN); path != "" {
			if err := filex.EnsureParentDir(path); err != nil {
				return nil, fmt.Errorf("db init error: %w", err)
			}
		}
	}

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if c.DatabaseDriver == repomanager.DriverSQLite {
		// SQLite allows one writer; a single connection keeps writes ordered.
		db.SetMaxOpenConns(1)
	}

	app, err := newApp(ctx, c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migrations: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		SigningKey: []byte(c.SigningKey),
		Issuer:     c.Issuer,
		Audience:   c.Audience,
		Expiry:     c.AccessTokenValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	// Delivery runs off the request path so a reset request for a known
	// address takes as long as one for an unknown address.
	notifier := notify.NewAsyncNotifier(newNotifier(c, logger), logger,
		notify.DefaultQueueSize, notify.DefaultDeliveryTimeout)

	svc, err := services.NewAuthService(
		db,
		rm,
		auth.NewBcryptHasher(c.BcryptCost),
		tokens,
		auth.NewResetTokenManager(c.ResetTokenValidityDuration),
		notifier,
		logger,
	)
	if err != nil {
		_ = notifier.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, notifier: notifier, authService: svc}, nil
}

func newNotifier(c *config.Config, logger logging.Logger) notify.Notifier {
	if c.SMTPHost == "" {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		ResetURL: c.ResetURL,
	})
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Close waits for pending reset notices and closes the database.
func (app *App) Close() error {
	return errors.Join(app.notifier.Close(), app.db.Close())
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the app.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := app.initSignalHandler(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService)
	runErr := s.Run(ctx)
	if runErr != nil {
		logging.LogError(ctx, app.logger, "grpc server failed", runErr)
	}

	app.logger.Info(context.Background(), "Stopping app...")
	return errors.Join(runErr, app.Close())
}
