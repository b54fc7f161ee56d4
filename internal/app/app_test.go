package app

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/services/list"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()
	app := New(WithLogger(testutil.QuietLogger()))

	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.BoardService)
	assert.NotNil(t, app.ListService)
	assert.NotNil(t, app.CardService)
	assert.NotNil(t, app.SubtaskService)
	assert.NotNil(t, app.MemberService)
	assert.NotNil(t, app.AlertService)
	assert.NoError(t, app.Close())
}

func TestFromConfig_SeedsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Backend = config.StorageSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "boards.db")
	cfg.Storage.Preload = true
	cfg.Seed = config.SeedConfig{BoardName: "Team", Lists: []string{"Todo", "In Progress", "Review", "Done"}}

	a, err := FromConfig(ctx, cfg, testutil.QuietLogger())
	require.NoError(t, err)
	sums, err := a.BoardService.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 4, sums[0].Lists)

	_, _, err = a.ListService.AddList(ctx, list.AddListRequest{BoardID: sums[0].ID, Name: "Later"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// reopening finds the persisted board and does not seed again
	a, err = FromConfig(ctx, cfg, testutil.QuietLogger())
	require.NoError(t, err)
	defer a.Close()
	sums, err = a.BoardService.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 5, sums[0].Lists)
}

func TestFromConfig_Redis(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Storage.Backend = config.StorageRedis
	cfg.Storage.RedisURL = "redis://" + mr.Addr()
	cfg.IDs.Format = "ulid"
	cfg.Seed.BoardName = "Main"

	a, err := FromConfig(context.Background(), cfg, testutil.QuietLogger())
	require.NoError(t, err)
	defer a.Close()

	keys := mr.Keys()
	assert.Contains(t, keys, "tablero:boards")
}

func TestFromConfig_UnknownBackend(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Storage.Backend = "tape"

	_, err := FromConfig(context.Background(), cfg, testutil.QuietLogger())
	assert.Error(t, err)
}
