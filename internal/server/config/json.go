package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/bookapi/internal/flagx"
	"github.com/dmitrijs2005/bookapi/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "15m" strings
// or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDriver              string         `json:"database_driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	LogLevel                    string         `json:"log_level"`
	SigningKey                  string         `json:"signing_key"`
	Issuer                      string         `json:"issuer"`
	Audience                    string         `json:"audience"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ResetTokenValidityDuration  timex.Duration `json:"reset_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPPort                    int            `json:"smtp_port"`
	SMTPUser                    string         `json:"smtp_user"`
	SMTPPassword                string         `json:"smtp_password"`
	SMTPFrom                    string         `json:"smtp_from"`
	ResetURL                    string         `json:"reset_url"`
}

// parseJSON overlays the file named by -c/-config in args. Keys missing from
// the file keep their current values.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJSON(config)
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.LogLevel = c.LogLevel
	config.SigningKey = c.SigningKey
	config.Issuer = c.Issuer
	config.Audience = c.Audience
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	config.BcryptCost = c.BcryptCost
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.SMTPFrom = c.SMTPFrom
	config.ResetURL = c.ResetURL
	return nil
}

func toJSON(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:            c.EndpointAddrGRPC,
		DatabaseDriver:              c.DatabaseDriver,
		DatabaseDSN:                 c.DatabaseDSN,
		LogLevel:                    c.LogLevel,
		SigningKey:                  c.SigningKey,
		Issuer:                      c.Issuer,
		Audience:                    c.Audience,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		ResetTokenValidityDuration:  timex.Duration{Duration: c.ResetTokenValidityDuration},
		BcryptCost:                  c.BcryptCost,
		SMTPHost:                    c.SMTPHost,
		SMTPPort:                    c.SMTPPort,
		SMTPUser:                    c.SMTPUser,
		SMTPPassword:                c.SMTPPassword,
		SMTPFrom:                    c.SMTPFrom,
		ResetURL:                    c.ResetURL,
	}
}
