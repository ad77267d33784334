// Package notify delivers password reset tokens out of band. The token only
// ever leaves the server through a Notifier.
package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/logging"
)

// ResetNotice is what a user needs to finish a password reset.
type ResetNotice struct {
	UserName  string
	Email     string
	Token     string
	ExpiresAt time.Time
}

type Notifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotice) error
}

// LogNotifier records that a reset was requested without delivering it.
// Used when no SMTP server is configured. The token is not logged.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, notice ResetNotice) error {
	n.logger.Warn(ctx, "password reset token not delivered: no mail transport configured",
		"username", notice.UserName,
		"expires_at", notice.ExpiresAt,
	)
	return nil
}
