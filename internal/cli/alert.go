package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/user"
)

// AlertCmd returns the command that posts a board-wide alert
func AlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert BOARD_ID MESSAGE...",
		Short: "Post an alert to everyone on a board",
		Long: `Post a board-wide alert over the daemon's websocket. Everyone watching
the board sees it immediately.

The author defaults to $TABLERO_AUTHOR, then the OS account name.

Examples:
  tablero alert 0b6c... "deploying in 5 minutes"
  tablero alert 0b6c... rollback done --author ops
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return &UsageError{Msg: fmt.Sprintf("%s requires a board id and a message", cmd.CommandPath())}
			}
			return nil
		},
		RunE: runAlert,
	}

	cmd.Flags().String("author", "", "Author name shown with the alert")

	return cmd
}

func runAlert(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	author, _ := cmd.Flags().GetString("author")
	payload := events.AddAlertPayload{
		BoardID:    args[0],
		AuthorName: user.DisplayName(author),
		Message:    strings.Join(args[1:], " "),
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	client, err := events.Dial(ctx, c.Client.WebsocketURL())
	if err != nil {
		return formatter.Fail(events.ClassifyDaemonError(err))
	}
	defer func() { _ = client.Close() }()

	env, err := client.Request(ctx, events.EventAddAlert, payload)
	if err != nil {
		return formatter.Fail(err)
	}
	var alert models.Alert
	if err := events.DecodePayload(env, &alert); err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success("alert", alert, alert.ID,
		fmt.Sprintf("✓ Alert posted to %s by %s", args[0], alert.AuthorName))
}
