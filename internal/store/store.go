// Package store owns the canonical in-memory boards. Every mutation runs on
// a private copy of one board under that board's lock and is committed by
// swapping the copy in, so readers only ever observe fully mutated trees and
// a committed *models.Board is never modified again.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ErrUnchanged may be returned by an Update callback to report a successful
// no-op. Nothing is committed and the current snapshot is returned.
var ErrUnchanged = errors.New("board unchanged")

// Persister is a durable backend the store writes through to. Fetch must
// return a *models.NotFoundError for unknown boards.
type Persister interface {
	Fetch(ctx context.Context, boardID string) (*models.Board, error)
	LoadAll(ctx context.Context) ([]*models.Board, error)
	Save(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, boardID string) error
}

// Option configures a Store
type Option func(*Store)

// WithPersister makes every commit write through to p
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithIDGenerator sets the generator used for board and seeded list ids
func WithIDGenerator(g types.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

type entry struct {
	mu      sync.Mutex // held for one handler invocation, never across I/O to clients
	board   *models.Board
	deleted bool
}

// Store maps board ids to boards
type Store struct {
	mu        sync.RWMutex // protects boards and removed
	boards    map[string]*entry
	removed   map[string]struct{}
	ids       types.IDGenerator
	now       func() time.Time
	persister Persister
	logger    *log.Logger
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		boards:  make(map[string]*entry),
		removed: make(map[string]struct{}),
		ids:     types.NewUUIDGenerator(),
		now:     time.Now,
		logger:  log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time. Handlers use it for comment,
// alert and activity timestamps.
func (s *Store) Now() time.Time {
	return s.now()
}

// Preload eagerly loads every persisted board into memory
func (s *Store) Preload(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, nil
	}
	boards, err := s.persister.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load boards: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range boards {
		if _, ok := s.boards[b.ID]; ok {
			continue
		}
		s.boards[b.ID] = &entry{board: b}
	}
	s.logger.WithField("boards", len(boards)).Info("boards preloaded")
	return len(boards), nil
}

// Get returns the current snapshot of a board. The snapshot must be treated
// as read-only.
func (s *Store) Get(ctx context.Context, boardID string) (*models.Board, error) {
	e, err := s.entry(ctx, boardID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, models.NotFound(models.KindBoard, boardID)
	}
	return e.board, nil
}

// List returns a summary of every board, sorted by name then id
func (s *Store) List(ctx context.Context) ([]models.BoardSummary, error) {
	byID := make(map[string]models.BoardSummary)

	if s.persister != nil {
		persisted, err := s.persister.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list boards: %w", err)
		}
		for _, b := range persisted {
			byID[b.ID] = b.Summary()
		}
	}

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.boards))
	for _, e := range s.boards {
		entries = append(entries, e)
	}
	removed := make(map[string]struct{}, len(s.removed))
	for id := range s.removed {
		removed[id] = struct{}{}
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			byID[e.board.ID] = e.board.Summary()
		}
		e.mu.Unlock()
	}

	out := make([]models.BoardSummary, 0, len(byID))
	for id, sum := range byID {
		if _, gone := removed[id]; gone {
			continue
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create adds a new board with an optional set of initial lists
func (s *Store) Create(ctx context.Context, name string, listNames ...string) (*models.Board, error) {
	now := s.now()
	b := models.NewBoard(s.ids.Next(), name, now)
	for _, ln := range listNames {
		b.Lists = append(b.Lists, &models.List{ID: s.ids.Next(), Name: ln, Cards: []*models.Card{}})
	}
	b.Version = 1

	if s.persister != nil {
		if err := s.persister.Save(ctx, b); err != nil {
			return nil, fmt.Errorf("failed to persist board: %w", err)
		}
	}

	s.mu.Lock()
	s.boards[b.ID] = &entry{board: b}
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{"board_id": b.ID, "lists": len(b.Lists)}).Info("board created")
	return b, nil
}

// Update runs fn against a private copy of the board and commits the copy
// if fn succeeds. On any error the stored board is left exactly as it was.
func (s *Store) Update(ctx context.Context, boardID string, fn func(draft *models.Board) error) (*models.Board, error) {
	e, err := s.entry(ctx, boardID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, models.NotFound(models.KindBoard, boardID)
	}

	draft := e.board.Clone()
	if err := fn(draft); err != nil {
		if errors.Is(err, ErrUnchanged) {
			return e.board, nil
		}
		return nil, err
	}
	return s.commit(ctx, e, draft)
}

// Replace overwrites a board with a complete document, used by backup
// restore. The document is validated as a whole first; a rejected document
// leaves the stored board untouched.
func (s *Store) Replace(ctx context.Context, boardID string, doc *models.Board) (*models.Board, error) {
	e, err := s.entry(ctx, boardID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, models.NotFound(models.KindBoard, boardID)
	}

	if doc == nil {
		return nil, models.Invalidf("board document is empty")
	}
	if doc.ID != "" && doc.ID != boardID {
		return nil, models.Invalidf("document id %q does not match board %q", doc.ID, boardID)
	}

	// the caller's document is checked before anything is copied
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	draft := doc.Clone()
	draft.Normalize()
	draft.CreatedAt = e.board.CreatedAt

	return s.commit(ctx, e, draft)
}

// Delete removes a board and everything below it
func (s *Store) Delete(ctx context.Context, boardID string) error {
	e, err := s.entry(ctx, boardID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return models.NotFound(models.KindBoard, boardID)
	}

	if s.persister != nil {
		if err := s.persister.Delete(ctx, boardID); err != nil {
			return fmt.Errorf("failed to delete persisted board: %w", err)
		}
	}
	e.deleted = true

	s.mu.Lock()
	delete(s.boards, boardID)
	s.removed[boardID] = struct{}{}
	s.mu.Unlock()

	s.logger.WithField("board_id", boardID).Info("board deleted")
	return nil
}

// commit must be called with e.mu held
func (s *Store) commit(ctx context.Context, e *entry, draft *models.Board) (*models.Board, error) {
	draft.ID = e.board.ID
	draft.Version = e.board.Version + 1
	draft.UpdatedAt = s.now()

	if s.persister != nil {
		if err := s.persister.Save(ctx, draft); err != nil {
			return nil, fmt.Errorf("failed to persist board: %w", err)
		}
	}
	e.board = draft

	s.logger.WithFields(log.Fields{"board_id": draft.ID, "version": draft.Version}).Debug("board committed")
	return draft, nil
}

// entry finds the board entry, falling back to the persister when the
// board has not been loaded yet
func (s *Store) entry(ctx context.Context, boardID string) (*entry, error) {
	if boardID == "" {
		return nil, models.NotFound(models.KindBoard, boardID)
	}

	s.mu.RLock()
	e, ok := s.boards[boardID]
	_, gone := s.removed[boardID]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}
	if gone || s.persister == nil {
		return nil, models.NotFound(models.KindBoard, boardID)
	}

	b, err := s.persister.Fetch(ctx, boardID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NotFound(models.KindBoard, boardID)
		}
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.boards[boardID]; ok {
		return e, nil
	}
	if _, gone := s.removed[boardID]; gone {
		return nil, models.NotFound(models.KindBoard, boardID)
	}
	e = &entry{board: b}
	s.boards[boardID] = e
	return e, nil
}
