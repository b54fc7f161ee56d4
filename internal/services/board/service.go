package board

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/store"
)

// Service defines whole-board operations
type Service interface {
	GetBoard(ctx context.Context, boardID string) (*models.Board, error)
	ListBoards(ctx context.Context) ([]models.BoardSummary, error)
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error)
	ReplaceBoard(ctx context.Context, boardID string, doc *models.Board) (*models.Board, error)
	DeleteBoard(ctx context.Context, boardID string) error
}

// CreateBoardRequest encapsulates data for creating a board.
// Lists seeds the board with empty lists in the given order.
type CreateBoardRequest struct {
	Name  string
	Lists []string
}

type service struct {
	store     *store.Store
	publisher events.BoardPublisher
}

// NewService creates a new board service
func NewService(st *store.Store, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		publisher: publisher,
	}
}

// GetBoard returns the current snapshot of a board
func (s *service) GetBoard(ctx context.Context, boardID string) (*models.Board, error) {
	return s.store.Get(ctx, boardID)
}

// ListBoards returns summaries of every known board
func (s *service) ListBoards(ctx context.Context) ([]models.BoardSummary, error) {
	return s.store.List(ctx)
}

// CreateBoard creates a board. Nobody can have joined it yet, so nothing
// is published.
func (s *service) CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error) {
	name, err := validateName(req.Name, ErrEmptyName)
	if err != nil {
		return nil, err
	}

	lists := make([]string, 0, len(req.Lists))
	for _, ln := range req.Lists {
		ln, err := validateName(ln, ErrEmptyListName)
		if err != nil {
			return nil, err
		}
		lists = append(lists, ln)
	}

	return s.store.Create(ctx, name, lists...)
}

// ReplaceBoard overwrites a board with a full document and broadcasts the
// result. A rejected document leaves the board untouched.
func (s *service) ReplaceBoard(ctx context.Context, boardID string, doc *models.Board) (*models.Board, error) {
	if doc == nil {
		return nil, models.Invalid(ErrEmptyDocument)
	}

	board, err := s.store.Replace(ctx, boardID, doc)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishBoard(board)
	}
	return board, nil
}

// DeleteBoard removes a board and tells everyone in its room
func (s *service) DeleteBoard(ctx context.Context, boardID string) error {
	if err := s.store.Delete(ctx, boardID); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishBoardDeleted(boardID)
	}
	return nil
}

func validateName(name string, empty error) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.Invalid(empty)
	}
	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return "", models.Invalid(ErrNameTooLong)
	}
	return name, nil
}
