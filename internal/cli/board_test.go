package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type testEnv struct {
	app   *app.App
	url   string
	board *models.Board
	dir   string
}

func setupCLI(t *testing.T) *testEnv {
	t.Helper()
	a := app.New(
		app.WithLogger(testutil.QuietLogger()),
		app.WithIDGenerator(&testutil.SeqIDs{}),
		app.WithClock(func() time.Time { return testutil.FixedTime }),
	)
	board := testutil.SeedBoard(t, a.Store, testutil.ThreeCardBoard())

	srv := daemon.NewServer(a, config.Default().Server)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	url := testutil.ServeTestDaemon(t, srv.Handler())

	return &testEnv{app: a, url: url, board: board, dir: t.TempDir()}
}

// run executes the root command against the test daemon
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	args = append(args, "--config", filepath.Join(e.dir, "config.yaml"), "--server", e.url)
	return testutil.ExecuteCommand(t, NewRootCmd(), args...)
}

// ============================================================================
// CREATE / LIST / SHOW
// ============================================================================

func TestBoardCreate(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "create", "Team", "--list", "Todo", "--list", "Done", "--json")
	require.NoError(t, err)

	result := testutil.ParseJSON(t, out)
	assert.Equal(t, true, result["success"])
	board := result["board"].(map[string]any)
	assert.Equal(t, "Team", board["name"])
	assert.Len(t, board["lists"], 2)

	sums, err := env.app.BoardService.ListBoards(context.Background())
	require.NoError(t, err)
	assert.Len(t, sums, 2)
}

func TestBoardCreate_Quiet(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "create", "Team", "--quiet")
	require.NoError(t, err)

	id := strings.TrimSpace(out)
	got, err := env.app.Store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Team", got.Name)
}

func TestBoardCreate_EmptyName(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "create", "   ", "--json")
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))

	result := testutil.ParseJSON(t, out)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "VALIDATION_FAILED", result["error"].(map[string]any)["code"])
}

func TestBoardList(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 boards")
	assert.Contains(t, out, env.board.ID)
	assert.Contains(t, out, "3 cards")

	out, _, err = env.run(t, "board", "list", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, env.board.ID+"\n", out)
}

func TestBoardShow(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "show", env.board.ID)
	require.NoError(t, err)
	for _, want := range []string{"B1", "Todo (3)", "Done (0)", "first", "third", "No cards"} {
		assert.Contains(t, out, want)
	}
}

func TestBoardShow_NotFound(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	_, stderr, err := env.run(t, "board", "show", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Contains(t, stderr, "Error:")
}

func TestBoardShow_MissingArg(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	_, _, err := env.run(t, "board", "show")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestFlags_JSONAndQuietConflict(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	_, _, err := env.run(t, "board", "list", "--json", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

// ============================================================================
// EXPORT / IMPORT
// ============================================================================

func TestBoardExportImport(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)
	ctx := context.Background()
	path := filepath.Join(env.dir, "backup.json")

	_, _, err := env.run(t, "board", "export", env.board.ID, "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc models.Board
	require.NoError(t, sonic.ConfigStd.Unmarshal(data, &doc))
	assert.Equal(t, env.board.ID, doc.ID)

	// restoring onto a daemon that lost the board needs --create
	require.NoError(t, env.app.BoardService.DeleteBoard(ctx, env.board.ID))
	_, _, err = env.run(t, "board", "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))

	out, _, err := env.run(t, "board", "import", path, "--create", "--quiet")
	require.NoError(t, err)
	restored, err := env.app.Store.Get(ctx, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "B1", restored.Name)
	assert.Equal(t, []string{"C1", "C2", "C3"}, testutil.CardIDs(restored.Lists[0]))
}

func TestBoardImport_ReplacesExisting(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)
	path := filepath.Join(env.dir, "doc.json")
	doc := `{"name":"Restored","lists":[{"id":"X","name":"Only","cards":[]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, _, err := env.run(t, "board", "import", path, "--id", env.board.ID, "--json")
	require.NoError(t, err)
	board := testutil.ParseJSON(t, out)["board"].(map[string]any)
	assert.Equal(t, "Restored", board["name"])
	assert.EqualValues(t, env.board.Version+1, board["version"])
}

func TestBoardImport_BadInput(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	tests := []struct {
		name string
		doc  string
		args []string
		exit int
	}{
		{"not json", `{"name":`, nil, ExitDataErr},
		{"no id", `{"name":"x","lists":[]}`, nil, ExitUsage},
		{"duplicate ids", `{"name":"x","lists":[{"id":"A","name":"a"},{"id":"A","name":"b"}]}`, []string{"--id", env.board.ID}, ExitValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))

			args := append([]string{"board", "import", path}, tt.args...)
			_, _, err := env.run(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, ExitCode(err))
		})
	}
}

// ============================================================================
// DELETE
// ============================================================================

func TestBoardDelete(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "board", "delete", env.board.ID, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")

	_, err = env.app.Store.Get(context.Background(), env.board.ID)
	assert.True(t, models.IsBoardNotFound(err))
}

func TestBoardDelete_Cancelled(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader("n\n"))
	out, _, err := testutil.ExecuteCommand(t, cmd, "board", "delete", env.board.ID,
		"--config", filepath.Join(env.dir, "config.yaml"), "--server", env.url)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	_, err = env.app.Store.Get(context.Background(), env.board.ID)
	assert.NoError(t, err)
}

// ============================================================================
// DAEMON UNAVAILABLE
// ============================================================================

func TestDaemonUnavailable(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "board", "list", "--json",
		"--config", filepath.Join(env.dir, "config.yaml"), "--server", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, ExitError, ExitCode(err))
	assert.Equal(t, "DAEMON_UNAVAILABLE", testutil.ParseJSON(t, out)["error"].(map[string]any)["code"])
}
