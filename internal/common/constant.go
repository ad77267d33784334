// Package common contains shared constants and sentinel errors used across
// BookAPI components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token
// on protected calls.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization header value.
const BearerScheme = "Bearer"

// PasswordResetRequestedMessage is the uniform reply to a password reset
// request, whether or not the email belongs to an account.
const PasswordResetRequestedMessage = "If the email exists, a password reset token has been generated."
