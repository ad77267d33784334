// Package client talks to the BookAPI auth server over gRPC.
//
// GRPCClient keeps the bearer token from the last Register or Login in memory
// and attaches it to every call through a unary interceptor. gRPC status codes
// are mapped to the sentinel errors in errors.go so callers can match them
// with errors.Is; the server's message is kept in the error text.
package client
