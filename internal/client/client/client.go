package client

import (
	"context"

	"github.com/dmitrijs2005/bookapi/internal/api"
)

// Client is the surface the CLI uses.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, userName, password string) (*api.AuthResponse, error)
	Logout()
	LoggedIn() bool
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, email, newPassword string) (string, error)
	WhoAmI(ctx context.Context) (*api.WhoAmIResponse, error)
}
