package cmd

import (
	"github.com/thenoetrevino/tablero/internal/cli"
)

var rootCmd = cli.NewRootCmd()

func Execute() error {
	return rootCmd.Execute()
}
