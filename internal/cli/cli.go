// Package cli implements the tablero command line: board administration
// over the daemon's REST surface and a live board watcher over its
// websocket.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/thenoetrevino/tablero/internal/config"
)

// CLI represents the CLI application context
type CLI struct {
	Client *Client
	Config *config.Config

	Out io.Writer
	Err io.Writer

	JSON  bool
	Quiet bool
}

// NewCLI builds a CLI talking to the daemon named in cfg
func NewCLI(cfg *config.Config) *CLI {
	return &CLI{
		Client: NewClient(cfg.Client.ServerURL),
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// Formatter returns an output formatter for the selected mode
func (c *CLI) Formatter() *OutputFormatter {
	return &OutputFormatter{JSON: c.JSON, Quiet: c.Quiet, Out: c.Out, Err: c.Err}
}

// Renderer returns a board renderer using the configured theme
func (c *CLI) Renderer() *Renderer {
	return NewRenderer(c.Config.Client.Theme, !c.isTerminal())
}

func (c *CLI) isTerminal() bool {
	f, ok := c.Out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
