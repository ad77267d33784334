// Package config handles configuration for the server component. Values are
// layered: defaults, then an optional JSON file (-c/-config), then BOOKAPI_*
// environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/server/auth"
)

// Config holds runtime settings for the BookAPI auth server.
//
// SigningKey has no default: the server refuses to start without one.
type Config struct {
	EndpointAddrGRPC string `env:"BOOKAPI_GRPC_ADDR"`
	DatabaseDriver   string `env:"BOOKAPI_DB_DRIVER"`
	DatabaseDSN      string `env:"BOOKAPI_DB_DSN"`
	LogLevel         string `env:"BOOKAPI_LOG_LEVEL"`

	SigningKey                  string        `env:"BOOKAPI_JWT_KEY"`
	Issuer                      string        `env:"BOOKAPI_JWT_ISSUER"`
	Audience                    string        `env:"BOOKAPI_JWT_AUDIENCE"`
	AccessTokenValidityDuration time.Duration `env:"BOOKAPI_JWT_EXPIRY"`
	ResetTokenValidityDuration  time.Duration `env:"BOOKAPI_RESET_EXPIRY"`
	BcryptCost                  int           `env:"BOOKAPI_BCRYPT_COST"`

	// SMTP delivery of reset tokens. With an empty SMTPHost tokens are not
	// delivered and only the request is logged.
	SMTPHost     string `env:"BOOKAPI_SMTP_HOST"`
	SMTPPort     int    `env:"BOOKAPI_SMTP_PORT"`
	SMTPUser     string `env:"BOOKAPI_SMTP_USER"`
	SMTPPassword string `env:"BOOKAPI_SMTP_PASSWORD"`
	SMTPFrom     string `env:"BOOKAPI_SMTP_FROM"`
	ResetURL     string `env:"BOOKAPI_RESET_URL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "bookapi.db"
	c.LogLevel = "info"
	c.Issuer = auth.DefaultIssuer
	c.Audience = auth.DefaultAudience
	c.AccessTokenValidityDuration = auth.DefaultTokenExpiry
	c.ResetTokenValidityDuration = auth.DefaultResetTokenExpiry
	c.BcryptCost = 10
	c.SMTPPort = 587
	c.SMTPFrom = "no-reply@bookapi.local"
}

// Load builds a Config from args (without the program name) and environ
// (KEY=value pairs, as from os.Environ) and validates it.
func Load(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Environ())
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.SigningKey == "":
		errs = append(errs, fmt.Errorf("signing key: %w", auth.ErrSigningKeyMissing))
	case len(c.SigningKey) < auth.MinSigningKeyLength:
		errs = append(errs, fmt.Errorf("signing key: %w", auth.ErrSigningKeyTooShort))
	}

	// Driver names match the registered database/sql drivers.
	if c.DatabaseDriver != "pgx" && c.DatabaseDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("database driver %q: must be pgx or sqlite", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is empty"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token expiry must be positive"))
	}
	if c.ResetTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("reset token expiry must be positive"))
	}
	if c.SMTPHost != "" && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		errs = append(errs, fmt.Errorf("smtp port %d out of range", c.SMTPPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
