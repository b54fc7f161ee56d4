package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/store"
)

// FixedTime is the clock reading used by test stores
var FixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// SeqIDs issues predictable ids: id-1, id-2, ...
type SeqIDs struct {
	mu sync.Mutex
	n  int
}

// Next returns the next sequential id
func (g *SeqIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// QuietLogger returns a logrus logger that discards everything
func QuietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

// NewTestStore creates an in-memory store with a fixed clock and
// sequential ids. The generator is returned so services share it.
func NewTestStore(t *testing.T, opts ...store.Option) (*store.Store, *SeqIDs) {
	t.Helper()
	ids := &SeqIDs{}
	base := []store.Option{
		store.WithIDGenerator(ids),
		store.WithClock(func() time.Time { return FixedTime }),
		store.WithLogger(QuietLogger()),
	}
	return store.New(append(base, opts...)...), ids
}

// SeedBoard replaces a fresh board's contents with doc and returns the
// committed snapshot. doc ids must be unique.
func SeedBoard(t *testing.T, st *store.Store, doc *models.Board) *models.Board {
	t.Helper()
	ctx := context.Background()
	b, err := st.Create(ctx, doc.Name)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	b, err = st.Replace(ctx, b.ID, doc)
	if err != nil {
		t.Fatalf("Failed to seed board: %v", err)
	}
	return b
}

// ThreeCardBoard returns a document with list L1 holding cards C1, C2, C3,
// an empty list L2 and no members
func ThreeCardBoard() *models.Board {
	return &models.Board{
		Name: "B1",
		Lists: []*models.List{
			{ID: "L1", Name: "Todo", Cards: []*models.Card{
				models.NewCard("C1", "first"),
				models.NewCard("C2", "second"),
				models.NewCard("C3", "third"),
			}},
			{ID: "L2", Name: "Done", Cards: []*models.Card{}},
		},
	}
}

// CardIDs lists the card ids of a list in order
func CardIDs(l *models.List) []string {
	out := make([]string, len(l.Cards))
	for i, c := range l.Cards {
		out[i] = c.ID
	}
	return out
}

// RecordingPublisher records published snapshots for verification in tests.
type RecordingPublisher struct {
	mu      sync.Mutex
	Boards  []*models.Board
	Deleted []string
}

// PublishBoard records the snapshot
func (p *RecordingPublisher) PublishBoard(board *models.Board) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Boards = append(p.Boards, board)
}

// PublishBoardDeleted records the board id
func (p *RecordingPublisher) PublishBoardDeleted(boardID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Deleted = append(p.Deleted, boardID)
}

// Count returns how many snapshots were published
func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Boards)
}
