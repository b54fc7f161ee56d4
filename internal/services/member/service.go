package member

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

// Service defines all member-related board operations
type Service interface {
	AddMember(ctx context.Context, boardID, name string) (*models.Board, *models.Member, error)
	RenameMember(ctx context.Context, boardID, memberID, name string) (*models.Board, error)
	RemoveMember(ctx context.Context, boardID, memberID string) (*models.Board, error)
}

type service struct {
	store     *store.Store
	ids       types.IDGenerator
	publisher events.BoardPublisher
}

// NewService creates a new member service
func NewService(st *store.Store, ids types.IDGenerator, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		ids:       ids,
		publisher: publisher,
	}
}

// AddMember registers a participant on the board
func (s *service) AddMember(ctx context.Context, boardID, name string) (*models.Board, *models.Member, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, nil, err
	}

	var created *models.Member
	board, err := s.store.Update(ctx, boardID, func(b *models.Board) error {
		created = &models.Member{ID: s.ids.Next(), Name: name}
		b.Members = append(b.Members, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(board)
	return board, created, nil
}

// RenameMember changes a member's display name. Comments and activity
// entries keep the name they were written with.
func (s *service) RenameMember(ctx context.Context, boardID, memberID, name string) (*models.Board, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	board, err := s.store.Update(ctx, boardID, func(b *models.Board) error {
		m, _, err := b.FindMember(memberID)
		if err != nil {
			return err
		}
		if m.Name == name {
			return store.ErrUnchanged
		}
		m.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// RemoveMember drops a member and unassigns it from every card on the board
func (s *service) RemoveMember(ctx context.Context, boardID, memberID string) (*models.Board, error) {
	board, err := s.store.Update(ctx, boardID, func(b *models.Board) error {
		_, idx, err := b.FindMember(memberID)
		if err != nil {
			return err
		}
		b.Members, _ = position.RemoveAt(b.Members, idx)
		for _, l := range b.Lists {
			for _, c := range l.Cards {
				c.Unassign(memberID)
			}
		}
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
