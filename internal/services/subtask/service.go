package subtask

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

// Service defines all subtask-related board operations
type Service interface {
	AddSubtask(ctx context.Context, req AddSubtaskRequest) (*models.Board, *models.Subtask, error)
	ToggleSubtask(ctx context.Context, ref Ref) (*models.Board, error)
	RenameSubtask(ctx context.Context, ref Ref, title string) (*models.Board, error)
	DeleteSubtask(ctx context.Context, ref Ref) (*models.Board, error)
	MoveSubtask(ctx context.Context, ref Ref, newIndex int) (*models.Board, error)
}

// AddSubtaskRequest encapsulates data for appending a subtask to a card
type AddSubtaskRequest struct {
	BoardID string
	ListID  string
	CardID  string
	Title   string
}

// Ref addresses one subtask
type Ref struct {
	BoardID   string
	ListID    string
	CardID    string
	SubtaskID string
}

type service struct {
	store     *store.Store
	ids       types.IDGenerator
	publisher events.BoardPublisher
}

// NewService creates a new subtask service
func NewService(st *store.Store, ids types.IDGenerator, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		ids:       ids,
		publisher: publisher,
	}
}

// AddSubtask appends an incomplete subtask to a card's checklist
func (s *service) AddSubtask(ctx context.Context, req AddSubtaskRequest) (*models.Board, *models.Subtask, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, nil, err
	}

	var created *models.Subtask
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(req.ListID, req.CardID)
		if err != nil {
			return err
		}
		created = &models.Subtask{ID: s.ids.Next(), Title: title}
		c.Subtasks = append(c.Subtasks, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(board)
	return board, created, nil
}

// ToggleSubtask flips the completed flag
func (s *service) ToggleSubtask(ctx context.Context, ref Ref) (*models.Board, error) {
	return s.mutate(ctx, ref, func(c *models.Card, st *models.Subtask, _ int) error {
		st.Completed = !st.Completed
		return nil
	})
}

// RenameSubtask changes a subtask's title. The current title is a no-op.
func (s *service) RenameSubtask(ctx context.Context, ref Ref, title string) (*models.Board, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ref, func(c *models.Card, st *models.Subtask, _ int) error {
		if st.Title == title {
			return store.ErrUnchanged
		}
		st.Title = title
		return nil
	})
}

// DeleteSubtask removes a subtask from its card
func (s *service) DeleteSubtask(ctx context.Context, ref Ref) (*models.Board, error) {
	return s.mutate(ctx, ref, func(c *models.Card, _ *models.Subtask, idx int) error {
		c.Subtasks, _ = position.RemoveAt(c.Subtasks, idx)
		return nil
	})
}

// MoveSubtask reorders a subtask within its card. newIndex is clamped and
// applies to the checklist without the moving subtask.
func (s *service) MoveSubtask(ctx context.Context, ref Ref, newIndex int) (*models.Board, error) {
	return s.mutate(ctx, ref, func(c *models.Card, _ *models.Subtask, idx int) error {
		if position.Clamp(newIndex, len(c.Subtasks)-1) == idx {
			return store.ErrUnchanged
		}
		c.Subtasks = position.Move(c.Subtasks, idx, newIndex)
		return nil
	})
}

// mutate locates the subtask on the draft board and applies fn
func (s *service) mutate(ctx context.Context, ref Ref, fn func(c *models.Card, st *models.Subtask, idx int) error) (*models.Board, error) {
	board, err := s.store.Update(ctx, ref.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(ref.ListID, ref.CardID)
		if err != nil {
			return err
		}
		st, idx, err := c.FindSubtask(ref.SubtaskID)
		if err != nil {
			return err
		}
		return fn(c, st, idx)
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.Invalid(ErrEmptyTitle)
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", models.Invalid(ErrTitleTooLong)
	}
	return title, nil
}

// publish hands a committed snapshot to the broadcast router
func (s *service) publish(board *models.Board) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBoard(board)
}
