package cli

import (
	"context"
	"errors"
)

type contextKey struct{}

// WithCLI stores the CLI for subcommands to pick up
func WithCLI(ctx context.Context, c *CLI) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// GetCLIFromContext returns the CLI set up by the root command
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		return nil, errors.New("cli not initialized")
	}
	c, ok := ctx.Value(contextKey{}).(*CLI)
	if !ok {
		return nil, errors.New("cli not initialized")
	}
	return c, nil
}
