package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/launcher"
	"github.com/thenoetrevino/tablero/internal/logging"
	"github.com/thenoetrevino/tablero/internal/models"
)

const clearScreen = "\033[H\033[2J"

var errWatchDone = errors.New("watch finished")

// WatchCmd returns the command that follows a board live
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch BOARD_ID",
		Short: "Follow a board live",
		Long: `Join a board over the daemon's websocket and redraw it on every change.
Press Ctrl-C to stop.

With --json every snapshot is written as one JSON line; with --quiet only
the version of each snapshot is printed.`,
		Args: exactArgs(1, "a board id"),
		RunE: runWatch,
	}

	cmd.Flags().Bool("descriptions", false, "Render card descriptions")
	cmd.Flags().Bool("once", false, "Exit after the first snapshot")
	cmd.Flags().Int("retries", launcher.DefaultRetries, "Dial attempts per (re)connect")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New()
	closer, err := logging.Configure(logger, c.Config.Logging)
	if err != nil {
		return formatter.Fail(err)
	}
	defer func() { _ = closer.Close() }()
	if c.Config.Logging.File == "" {
		logger.SetOutput(c.Err)
	}

	once, _ := cmd.Flags().GetBool("once")
	retries, _ := cmd.Flags().GetInt("retries")
	r := c.Renderer()
	r.Descriptions, _ = cmd.Flags().GetBool("descriptions")
	redraw := c.isTerminal() && !c.JSON && !c.Quiet

	err = launcher.Watch(ctx, launcher.WatchOptions{
		URL:     c.Client.WebsocketURL(),
		BoardID: args[0],
		Retries: retries,
		Logger:  logger,
		OnBoard: func(b *models.Board) error {
			if err := showSnapshot(c, formatter, r, b, redraw); err != nil {
				return err
			}
			if once {
				return errWatchDone
			}
			return nil
		},
	})

	switch {
	case err == nil, errors.Is(err, errWatchDone), errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, launcher.ErrBoardDeleted):
		return formatter.Fail(fmt.Errorf("board %s: %w", args[0], err))
	default:
		return formatter.Fail(err)
	}
}

func showSnapshot(c *CLI, formatter *OutputFormatter, r *Renderer, b *models.Board, redraw bool) error {
	switch {
	case c.Quiet:
		_, err := fmt.Fprintln(c.Out, b.Version)
		return err
	case c.JSON:
		return formatter.encode(b)
	}

	if redraw {
		fmt.Fprint(c.Out, clearScreen)
	}
	_, err := fmt.Fprint(c.Out, r.Board(b))
	return err
}
