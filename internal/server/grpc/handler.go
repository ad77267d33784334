package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bookapi/internal/api"
	"github.com/dmitrijs2005/bookapi/internal/common"
	"github.com/dmitrijs2005/bookapi/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	result, err := s.auth.Register(ctx, services.RegisterRequest{
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
		Mobile:   req.Mobile,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.AuthResponse{Token: result.Token, UserName: result.UserName, Email: result.Email}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	result, err := s.auth.Login(ctx, req.UserName, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.AuthResponse{Token: result.Token, UserName: result.UserName, Email: result.Email}, nil
}

// RequestPasswordReset answers with the same message whether or not the
// email is registered.
func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *api.PasswordResetRequest) (*api.MessageResponse, error) {
	if err := s.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}

	return &api.MessageResponse{Message: common.PasswordResetRequestedMessage}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.MessageResponse, error) {
	err := s.auth.ResetPassword(ctx, services.ResetPasswordRequest{
		Token:       req.Token,
		Email:       req.Email,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.MessageResponse{Message: "Password has been reset."}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *api.WhoAmIRequest) (*api.WhoAmIResponse, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	resp := &api.WhoAmIResponse{
		UserID:   claims.UserID(),
		UserName: claims.UserName,
		Email:    claims.Email,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp, nil
}

// toStatus maps service errors to gRPC codes. Anything unclassified is
// reported as a bare internal error; details stay in the server log.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrUsernameTaken), errors.Is(err, common.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrInvalidOrExpiredToken), errors.Is(err, common.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
