package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/api"
	"github.com/dmitrijs2005/bookapi/internal/client/client"
	"github.com/dmitrijs2005/bookapi/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	token string

	lastRegister *api.RegisterRequest
	lastLogin    [2]string
	lastEmail    string
	lastReset    [3]string
	hadDeadline  bool

	authErr error
	msgErr  error
	pingErr error
	closed  bool
	whoResp *api.WhoAmIResponse
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error { f.closed = true; return nil }
func (f *fakeClient) Ping(ctx context.Context) error {
	_, f.hadDeadline = ctx.Deadline()
	return f.pingErr
}
func (f *fakeClient) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	f.lastRegister = req
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.token = "T"
	return &api.AuthResponse{Token: "T", UserName: req.UserName, Email: req.Email}, nil
}
func (f *fakeClient) Login(ctx context.Context, userName, password string) (*api.AuthResponse, error) {
	f.lastLogin = [2]string{userName, password}
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.token = "T"
	return &api.AuthResponse{Token: "T", UserName: userName}, nil
}
func (f *fakeClient) Logout()        { f.token = "" }
func (f *fakeClient) LoggedIn() bool { return f.token != "" }
func (f *fakeClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	f.lastEmail = email
	return "reset requested", f.msgErr
}
func (f *fakeClient) ResetPassword(ctx context.Context, token, email, newPassword string) (string, error) {
	f.lastReset = [3]string{token, email, newPassword}
	if f.msgErr != nil {
		return "", f.msgErr
	}
	return "Password has been reset.", nil
}
func (f *fakeClient) WhoAmI(ctx context.Context) (*api.WhoAmIResponse, error) {
	if !f.LoggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	return f.whoResp, nil
}

// stubInputs feeds answers to text prompts in order and returns password for
// every password prompt.
func stubInputs(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", fmt.Errorf("unexpected prompt %q", prompt)
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(password), nil }
}

func newTestApp(f *fakeClient) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{ServerEndpointAddr: "x", RequestTimeout: time.Second}
	return newApp(cfg, f, strings.NewReader(""), &out), &out
}

func TestRegister(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "P@ssw0rd1", "alice", "alice@example.com", "")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, &api.RegisterRequest{UserName: "alice", Password: "P@ssw0rd1", Email: "alice@example.com"}, f.lastRegister)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice)", a.getStatus())
	assert.Contains(t, out.String(), "Registered and logged in as alice")
}

func TestRegister_Error(t *testing.T) {
	f := &fakeClient{authErr: fmt.Errorf("%w: username already exists", client.ErrRejected)}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "alice", "alice@example.com", "")

	require.ErrorIs(t, a.Register(context.Background()), client.ErrRejected)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Error: request rejected: username already exists")
}

func TestLoginLogout(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	stubInputs(t, "pw", "alice")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, [2]string{"alice", "pw"}, f.lastLogin)
	assert.Equal(t, "(alice)", a.getStatus())

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())
	assert.Contains(t, out.String(), "Logged out")
}

func TestWhoAmI(t *testing.T) {
	f := &fakeClient{whoResp: &api.WhoAmIResponse{UserID: "u-1", UserName: "alice", Email: "alice@example.com", ExpiresAt: time.Now()}}
	a, out := newTestApp(f)

	require.ErrorIs(t, a.WhoAmI(context.Background()), client.ErrNotLoggedIn)

	f.token = "T"
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "alice@example.com")
	assert.Contains(t, out.String(), "u-1")
}

func TestPasswordResetFlow(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)

	stubInputs(t, "N3w!", "alice@example.com", "tok", "alice@example.com")

	require.NoError(t, a.RequestReset(context.Background()))
	assert.Equal(t, "alice@example.com", f.lastEmail)

	require.NoError(t, a.ResetPassword(context.Background()))
	assert.Equal(t, [3]string{"tok", "alice@example.com", "N3w!"}, f.lastReset)
	assert.Contains(t, out.String(), "Password has been reset.")
}

func TestPing(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)

	require.NoError(t, a.Ping(context.Background()))
	assert.True(t, f.hadDeadline)
	assert.Contains(t, out.String(), "Server is up")

	f.pingErr = client.ErrUnavailable
	require.ErrorIs(t, a.Ping(context.Background()), client.ErrUnavailable)
}

func TestRun_ClosesClient(t *testing.T) {
	f := &fakeClient{}
	var out bytes.Buffer
	a := newApp(&config.Config{RequestTimeout: time.Second}, f, strings.NewReader("help\nexit\n"), &out)

	require.NoError(t, a.Run(context.Background()))
	assert.True(t, f.closed)
	assert.Contains(t, out.String(), "Welcome to BookAPI CLI")
}
