package list

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/position"
	"github.com/thenoetrevino/tablero/internal/store"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines all list-related board operations
type Service interface {
	AddList(ctx context.Context, req AddListRequest) (*models.Board, *models.List, error)
	RenameList(ctx context.Context, req RenameListRequest) (*models.Board, error)
	RemoveList(ctx context.Context, boardID, listID string) (*models.Board, error)
	MoveList(ctx context.Context, req MoveListRequest) (*models.Board, error)
}

// AddListRequest encapsulates data for appending a list
type AddListRequest struct {
	BoardID string
	Name    string
}

// RenameListRequest encapsulates data for renaming a list
type RenameListRequest struct {
	BoardID string
	ListID  string
	Name    string
}

// MoveListRequest encapsulates data for reordering a list.
// NewIndex is clamped to the valid range.
type MoveListRequest struct {
	BoardID  string
	ListID   string
	NewIndex int
}

type service struct {
	store     *store.Store
	ids       types.IDGenerator
	publisher events.BoardPublisher
}

// NewService creates a new list service
func NewService(st *store.Store, ids types.IDGenerator, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		ids:       ids,
		publisher: publisher,
	}
}

// AddList appends a new list to the end of the board
func (s *service) AddList(ctx context.Context, req AddListRequest) (*models.Board, *models.List, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, nil, err
	}

	var created *models.List
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		created = &models.List{ID: s.ids.Next(), Name: name, Cards: []*models.Card{}}
		b.Lists = append(b.Lists, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(board)
	return board, created, nil
}

// RenameList renames a list. Renaming to the current name succeeds without
// producing a new snapshot.
func (s *service) RenameList(ctx context.Context, req RenameListRequest) (*models.Board, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}

	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		l, _, err := b.FindList(req.ListID)
		if err != nil {
			return err
		}
		if l.Name == name {
			return store.ErrUnchanged
		}
		l.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// RemoveList deletes a list together with all of its cards
func (s *service) RemoveList(ctx context.Context, boardID, listID string) (*models.Board, error) {
	board, err := s.store.Update(ctx, boardID, func(b *models.Board) error {
		_, idx, err := b.FindList(listID)
		if err != nil {
			return err
		}
		b.Lists, _ = position.RemoveAt(b.Lists, idx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// MoveList moves a list to a new column position
func (s *service) MoveList(ctx context.Context, req MoveListRequest) (*models.Board, error) {
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, idx, err := b.FindList(req.ListID)
		if err != nil {
			return err
		}
		if position.Clamp(req.NewIndex, len(b.Lists)-1) == idx {
			return store.ErrUnchanged
		}
		b.Lists = position.Move(b.Lists, idx, req.NewIndex)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.Invalid(ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return "", models.Invalid(ErrNameTooLong)
	}
	return name, nil
}

// publish hands a committed snapshot to the broadcast router
func (s *service) publish(board *models.Board) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBoard(board)
}
