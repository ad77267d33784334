package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) RequestReset(ctx context.Context) error {
	f.calls = append(f.calls, "forgot")
	return nil
}
func (f *fakeExec) ResetPassword(ctx context.Context) error {
	f.calls = append(f.calls, "reset")
	return nil
}
func (f *fakeExec) Ping(ctx context.Context) error { f.calls = append(f.calls, "ping"); return nil }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"login",
		"help",
		"whoami",
		"forgot",
		"reset",
		"ping",
		"foobar",
		"logout",
		"register",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input), &out)

	assert.Equal(t, []string{"login", "whoami", "forgot", "reset", "ping", "logout", "register"}, exec.calls)
	assert.Contains(t, out.String(), "Available commands: register, login")
	assert.Contains(t, out.String(), "Available commands: whoami, logout")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "bookapi status> ")
	assert.True(t, strings.HasSuffix(out.String(), "Bye!\n"))
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("ping")), &out)

	assert.Equal(t, []string{"ping"}, exec.calls)
	assert.NotContains(t, out.String(), "Bye!")
}
