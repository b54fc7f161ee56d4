package alert

import (
	"context"
	"strings"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/store"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines board-wide alert operations. Alerts are append-only.
type Service interface {
	AddAlert(ctx context.Context, req AddAlertRequest) (*models.Board, *models.Alert, error)
}

// AddAlertRequest encapsulates data for posting an alert
type AddAlertRequest struct {
	BoardID    string
	AuthorName string
	Message    string
}

type service struct {
	store     *store.Store
	ids       types.IDGenerator
	publisher events.BoardPublisher
}

// NewService creates a new alert service
func NewService(st *store.Store, ids types.IDGenerator, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		ids:       ids,
		publisher: publisher,
	}
}

// AddAlert appends an alert. It always succeeds when the board exists.
func (s *service) AddAlert(ctx context.Context, req AddAlertRequest) (*models.Board, *models.Alert, error) {
	author := strings.TrimSpace(req.AuthorName)
	if author == "" {
		author = models.AnonymousAuthor
	}

	var created *models.Alert
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		created = &models.Alert{
			ID:         s.ids.Next(),
			AuthorName: author,
			Message:    req.Message,
			Timestamp:  s.store.Now(),
		}
		b.Alerts = append(b.Alerts, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishBoard(board)
	}
	return board, created, nil
}
