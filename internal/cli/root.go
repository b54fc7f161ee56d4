package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/config"
)

// NewRootCmd returns the tablero command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tablero",
		Short: "Tablero - shared boards with live updates",
		Long: `Tablero administers the boards held by a running tablero daemon and
follows them live from the terminal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	// Agent-friendly flags
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("quiet", false, "Minimal output (IDs only)")

	cmd.PersistentFlags().String("config", "", "Config file (default: $TABLERO_CONFIG or ~/.config/tablero/config.yaml)")
	cmd.PersistentFlags().String("server", "", "Daemon base URL (overrides client.server_url)")

	cmd.AddCommand(BoardCmd())
	cmd.AddCommand(AlertCmd())
	cmd.AddCommand(WatchCmd())

	return cmd
}

// setup loads configuration and stores the CLI in the command's context
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Client.ServerURL = server
	}

	c := NewCLI(cfg)
	c.Out = cmd.OutOrStdout()
	c.Err = cmd.ErrOrStderr()
	c.JSON, _ = cmd.Flags().GetBool("json")
	c.Quiet, _ = cmd.Flags().GetBool("quiet")
	if c.JSON && c.Quiet {
		return &UsageError{Msg: "--json and --quiet cannot be combined"}
	}

	cmd.SetContext(WithCLI(cmd.Context(), c))
	return nil
}
