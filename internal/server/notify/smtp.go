package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// TokenPlaceholder is replaced by the reset token in SMTPConfig.ResetURL.
const TokenPlaceholder = "{token}"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ResetURL, when set, is sent as a link with TokenPlaceholder filled in.
	ResetURL string
}

// SMTPNotifier mails reset tokens with net/smtp. STARTTLS is used when the
// server offers it.
type SMTPNotifier struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

func (s *SMTPNotifier) NotifyPasswordReset(ctx context.Context, n ResetNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := s.buildMessage(n)
	if err := s.send(s.addr, s.auth, s.cfg.From, []string{n.Email}, msg); err != nil {
		return oops.Code("NOTIFY_SMTP_FAILED").
			With("smtp_addr", s.addr).
			With("username", n.UserName).
			Wrapf(err, "send reset mail")
	}
	return nil
}

func (s *SMTPNotifier) buildMessage(n ResetNotice) []byte {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\r\n\r\n", n.UserName)
	body.WriteString("A password reset was requested for your BookAPI account.\r\n")
	if s.cfg.ResetURL != "" {
		fmt.Fprintf(&body, "Open this link to choose a new password:\r\n%s\r\n",
			strings.ReplaceAll(s.cfg.ResetURL, TokenPlaceholder, n.Token))
	} else {
		fmt.Fprintf(&body, "Your reset token is:\r\n%s\r\n", n.Token)
	}
	fmt.Fprintf(&body, "\r\nIt expires at %s.\r\n", n.ExpiresAt.UTC().Format(time.RFC1123))
	body.WriteString("If you did not ask for this, ignore this message.\r\n")

	header := fmt.Sprintf("From: %s\r\n", s.cfg.From) +
		fmt.Sprintf("To: %s\r\n", n.Email) +
		"Subject: BookAPI password reset\r\n" +
		fmt.Sprintf("Date: %s\r\n", s.now().Format(time.RFC1123Z)) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n"

	return []byte(header + body.String())
}
