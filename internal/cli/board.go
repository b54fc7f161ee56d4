package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/models"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}

	cmd.AddCommand(boardCreateCmd())
	cmd.AddCommand(boardListCmd())
	cmd.AddCommand(boardShowCmd())
	cmd.AddCommand(boardExportCmd())
	cmd.AddCommand(boardImportCmd())
	cmd.AddCommand(boardDeleteCmd())

	return cmd
}

func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &UsageError{Msg: fmt.Sprintf("%s requires %s", cmd.CommandPath(), what)}
		}
		return nil
	}
}

func boardCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new board",
		Long: `Create a new board, optionally with initial lists.

Examples:
  # Simple board (human-readable output)
  tablero board create "Team"

  # With lists, JSON output for agents
  tablero board create "Team" --list Todo --list Doing --list Done --json

  # Quiet mode for bash capture
  BOARD_ID=$(tablero board create "Team" --quiet)
`,
		Args: exactArgs(1, "a board name"),
		RunE: runBoardCreate,
	}

	cmd.Flags().StringSlice("list", nil, "Initial list name (repeatable)")

	return cmd
}

func runBoardCreate(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	lists, _ := cmd.Flags().GetStringSlice("list")
	board, err := c.Client.CreateBoard(cmd.Context(), args[0], lists)
	if err != nil {
		return formatter.Fail(err)
	}

	human := fmt.Sprintf("✓ Board '%s' created successfully (ID: %s)", board.Name, board.ID)
	for _, l := range board.Lists {
		human += fmt.Sprintf("\n  [%s] %s", l.ID, l.Name)
	}
	return formatter.Success("board", board, board.ID, human)
}

func boardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all boards",
		Long:  "List all boards held by the daemon with their sizes.",
		Args:  exactArgs(0, "no arguments"),
		RunE:  runBoardList,
	}
}

func runBoardList(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	boards, err := c.Client.ListBoards(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	if c.Quiet {
		// Just print IDs (one per line)
		for _, b := range boards {
			fmt.Fprintln(c.Out, b.ID)
		}
		return nil
	}
	if c.JSON {
		return formatter.Success("boards", boards, "", "")
	}

	if len(boards) == 0 {
		fmt.Fprintln(c.Out, "No boards found")
		return nil
	}
	fmt.Fprintf(c.Out, "Found %d boards:\n\n", len(boards))
	for _, b := range boards {
		fmt.Fprintf(c.Out, "  [%s] %s  (%d lists, %d cards, %d members, v%d)\n",
			b.ID, b.Name, b.Lists, b.Cards, b.Members, b.Version)
	}
	return nil
}

func boardShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show BOARD_ID",
		Short: "Show a board",
		Args:  exactArgs(1, "a board id"),
		RunE:  runBoardShow,
	}

	cmd.Flags().Bool("descriptions", false, "Render card descriptions")

	return cmd
}

func runBoardShow(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	board, err := c.Client.GetBoard(cmd.Context(), args[0])
	if err != nil {
		return formatter.Fail(err)
	}

	r := c.Renderer()
	r.Descriptions, _ = cmd.Flags().GetBool("descriptions")
	return formatter.Success("board", board, board.ID, r.Board(board))
}

func boardExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export BOARD_ID",
		Short: "Write a board document for backup",
		Long: `Write the full board document as JSON. The output can be restored
with 'tablero board import'.

Examples:
  tablero board export 0b6c... > team.json
  tablero board export 0b6c... --output team.json
`,
		Args: exactArgs(1, "a board id"),
		RunE: runBoardExport,
	}

	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runBoardExport(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	board, err := c.Client.GetBoard(cmd.Context(), args[0])
	if err != nil {
		return formatter.Fail(err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(board, "", "  ")
	if err != nil {
		return formatter.Fail(fmt.Errorf("failed to encode board: %w", err))
	}
	data = append(data, '\n')

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return formatter.Fail(fmt.Errorf("failed to write %s: %w", output, err))
	}
	return formatter.Success("path", output, board.ID,
		fmt.Sprintf("✓ Board '%s' (v%d) exported to %s", board.Name, board.Version, output))
}

func boardImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a board from an exported document",
		Long: `Replace a board with the document in FILE. Every subscriber of the
board receives the restored state.

Use "-" to read the document from stdin. With --create a missing target
board is created first, so a backup can be restored onto a fresh daemon
under a new id.`,
		Args: exactArgs(1, "a file"),
		RunE: runBoardImport,
	}

	cmd.Flags().String("id", "", "Target board id (default: the document's id)")
	cmd.Flags().Bool("create", false, "Create the board if it does not exist")

	return cmd
}

func runBoardImport(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return formatter.Fail(fmt.Errorf("failed to read %s: %w", args[0], err))
	}

	var doc models.Board
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return formatter.Fail(&DataError{Err: fmt.Errorf("%s is not a board document: %w", args[0], err)})
	}

	id, _ := cmd.Flags().GetString("id")
	create, _ := cmd.Flags().GetBool("create")
	if id == "" {
		id = doc.ID
	}
	if strings.TrimSpace(id) == "" && !create {
		return formatter.Fail(&UsageError{Msg: "the document has no id, pass --id or --create"})
	}

	board, err := restoreBoard(cmd.Context(), c.Client, id, &doc, create)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success("board", board, board.ID,
		fmt.Sprintf("✓ Board '%s' restored (ID: %s, v%d)", board.Name, board.ID, board.Version))
}

// restoreBoard replaces board id with doc. The document's own id is dropped
// so it can land on a different board.
func restoreBoard(ctx context.Context, client *Client, id string, doc *models.Board, create bool) (*models.Board, error) {
	doc.ID = ""
	if id != "" {
		board, err := client.ReplaceBoard(ctx, id, doc)
		if err == nil || !create || ExitCode(err) != ExitNotFound {
			return board, err
		}
	}

	created, err := client.CreateBoard(ctx, doc.Name, nil)
	if err != nil {
		return nil, err
	}
	return client.ReplaceBoard(ctx, created.ID, doc)
}

func boardDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete BOARD_ID",
		Short: "Delete a board",
		Long:  "Delete a board by ID (requires confirmation unless --force, --json or --quiet).",
		Args:  exactArgs(1, "a board id"),
		RunE:  runBoardDelete,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")

	return cmd
}

func runBoardDelete(cmd *cobra.Command, args []string) error {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}
	formatter := c.Formatter()
	id := args[0]

	board, err := c.Client.GetBoard(cmd.Context(), id)
	if err != nil {
		return formatter.Fail(err)
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && !c.Quiet && !c.JSON {
		fmt.Fprintf(c.Out, "Delete board '%s' (%s)? (y/N): ", board.Name, id)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.Out, "Cancelled")
			return nil
		}
	}

	if err := c.Client.DeleteBoard(cmd.Context(), id); err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success("boardId", id, "", fmt.Sprintf("✓ Board %s deleted successfully", id))
}
