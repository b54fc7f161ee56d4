package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/alert"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func TestWatch_Once(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "watch", env.board.ID, "--once", "--json")
	require.NoError(t, err)

	var b models.Board
	require.NoError(t, sonicUnmarshal(out, &b))
	assert.Equal(t, env.board.ID, b.ID)
	assert.Equal(t, env.board.Version, b.Version)
}

func TestWatch_UnknownBoard(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	_, _, err := env.run(t, "watch", "nope", "--once")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestWatch_FollowsUntilDeleted(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)
	ctx := context.Background()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, _, err := testutil.ExecuteCommand(t, NewRootCmd(), "watch", env.board.ID, "--quiet",
			"--config", filepath.Join(env.dir, "config.yaml"), "--server", env.url)
		done <- result{out, err}
	}()

	require.True(t, testutil.WaitForCount(t, func() int {
		return env.app.Router.Members(env.board.ID)
	}, 1, 2*time.Second))

	_, _, err := env.app.AlertService.AddAlert(ctx, alert.AddAlertRequest{
		BoardID: env.board.ID, AuthorName: "ops", Message: "deploy at noon",
	})
	require.NoError(t, err)
	require.NoError(t, env.app.BoardService.DeleteBoard(ctx, env.board.ID))

	select {
	case r := <-done:
		require.Error(t, r.err)
		assert.Equal(t, ExitNotFound, ExitCode(r.err))
		// the join may race the deletion, so any snapshots seen are checked
		// for order only
		var last int64
		for _, line := range strings.Fields(r.out) {
			var v int64
			_, err := fmt.Sscan(line, &v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, env.board.Version)
			assert.Greater(t, v, last)
			last = v
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after the board was deleted")
	}
}

func sonicUnmarshal(s string, v any) error {
	return sonic.ConfigStd.UnmarshalFromString(strings.TrimSpace(s), v)
}

func TestAlert(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	out, _, err := env.run(t, "alert", env.board.ID, "deploy", "at", "noon", "--author", "ops", "--json")
	require.NoError(t, err)
	posted := testutil.ParseJSON(t, out)["alert"].(map[string]any)
	assert.Equal(t, "deploy at noon", posted["message"])
	assert.Equal(t, "ops", posted["authorName"])

	got, err := env.app.Store.Get(context.Background(), env.board.ID)
	require.NoError(t, err)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "deploy at noon", got.Alerts[0].Message)
	assert.Equal(t, env.board.Version+1, got.Version)
}

func TestAlert_Errors(t *testing.T) {
	t.Parallel()
	env := setupCLI(t)

	_, _, err := env.run(t, "alert", "nope", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))

	_, _, err = env.run(t, "alert", env.board.ID)
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}
