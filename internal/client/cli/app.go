package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/bookapi/internal/client/client"
	"github.com/dmitrijs2005/bookapi/internal/client/config"
)

type App struct {
	config   *config.Config
	client   client.Client
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

// Run checks the server once and then runs the REPL until exit or EOF. The
// connection is closed on return.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to BookAPI CLI (type 'help' for commands)")
	_ = a.Ping(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader), a.out)
	return a.client.Close()
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// withTimeout bounds a single request by the configured timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// report prints err, if any, and returns it unchanged.
func (a *App) report(err error) error {
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

// Ping reports whether the server's auth service is serving.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}
