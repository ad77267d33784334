// Package cli provides the interactive BookAPI command-line client.
//
// It wires configuration and the gRPC client into a small REPL: register,
// login, whoami, the two-step password reset, and logout. Passwords are read
// from the terminal without echo and wiped after use.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// stdin is closed.
package cli
