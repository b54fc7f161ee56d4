package board

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func setup(t *testing.T) (Service, *testutil.RecordingPublisher) {
	t.Helper()
	st, _ := testutil.NewTestStore(t)
	pub := &testutil.RecordingPublisher{}
	return NewService(st, pub), pub
}

// ============================================================================
// CREATE / GET / LIST
// ============================================================================

func TestCreateBoard(t *testing.T) {
	t.Parallel()
	svc, pub := setup(t)
	ctx := context.Background()

	b, err := svc.CreateBoard(ctx, CreateBoardRequest{Name: "  Sprint  ", Lists: []string{"Todo", "Doing", "Done"}})
	require.NoError(t, err)
	assert.Equal(t, "Sprint", b.Name)
	assert.EqualValues(t, 1, b.Version)
	require.Len(t, b.Lists, 3)
	assert.Equal(t, "Doing", b.Lists[1].Name)
	assert.Empty(t, b.Members)
	assert.Empty(t, b.Alerts)
	assert.Equal(t, 0, pub.Count())

	got, err := svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestCreateBoard_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  CreateBoardRequest
		want error
	}{
		{"empty name", CreateBoardRequest{Name: " "}, ErrEmptyName},
		{"long name", CreateBoardRequest{Name: strings.Repeat("x", models.MaxNameLength+1)}, ErrNameTooLong},
		{"empty list name", CreateBoardRequest{Name: "b", Lists: []string{"a", ""}}, ErrEmptyListName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := setup(t)
			_, err := svc.CreateBoard(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, models.IsValidation(err))
		})
	}
}

func TestListBoards(t *testing.T) {
	t.Parallel()
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateBoard(ctx, CreateBoardRequest{Name: "zeta"})
	require.NoError(t, err)
	_, err = svc.CreateBoard(ctx, CreateBoardRequest{Name: "alpha", Lists: []string{"x"}})
	require.NoError(t, err)

	sums, err := svc.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "alpha", sums[0].Name)
	assert.Equal(t, 1, sums[0].Lists)
}

// ============================================================================
// REPLACE
// ============================================================================

func TestReplaceBoard(t *testing.T) {
	t.Parallel()
	svc, pub := setup(t)
	ctx := context.Background()

	b, err := svc.CreateBoard(ctx, CreateBoardRequest{Name: "B1"})
	require.NoError(t, err)

	doc := testutil.ThreeCardBoard()
	replaced, err := svc.ReplaceBoard(ctx, b.ID, doc)
	require.NoError(t, err)
	assert.Equal(t, b.ID, replaced.ID)
	assert.EqualValues(t, 2, replaced.Version)
	assert.Equal(t, []string{"C1", "C2", "C3"}, testutil.CardIDs(replaced.Lists[0]))
	assert.Equal(t, 1, pub.Count())
}

func TestReplaceBoard_InvalidLeavesBoardUntouched(t *testing.T) {
	t.Parallel()
	svc, pub := setup(t)
	ctx := context.Background()

	b, err := svc.CreateBoard(ctx, CreateBoardRequest{Name: "B1", Lists: []string{"Todo"}})
	require.NoError(t, err)

	doc := testutil.ThreeCardBoard()
	doc.Lists[0].Cards[1].AssignedMembers = []string{"nobody"}
	_, err = svc.ReplaceBoard(ctx, b.ID, doc)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	_, err = svc.ReplaceBoard(ctx, b.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	got, err := svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Equal(t, 0, pub.Count())

	_, err = svc.ReplaceBoard(ctx, "missing", testutil.ThreeCardBoard())
	assert.True(t, models.IsBoardNotFound(err))
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteBoard(t *testing.T) {
	t.Parallel()
	svc, pub := setup(t)
	ctx := context.Background()

	b, err := svc.CreateBoard(ctx, CreateBoardRequest{Name: "B1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBoard(ctx, b.ID))
	assert.Equal(t, []string{b.ID}, pub.Deleted)

	_, err = svc.GetBoard(ctx, b.ID)
	assert.True(t, models.IsBoardNotFound(err))

	err = svc.DeleteBoard(ctx, b.ID)
	assert.True(t, models.IsBoardNotFound(err))
	assert.Len(t, pub.Deleted, 1)
}
