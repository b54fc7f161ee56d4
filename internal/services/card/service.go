package card

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/position"
	"github.com/thenoetrevino/tablero/internal/store"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines all card-related board operations
type Service interface {
	// Structure
	AddCard(ctx context.Context, req AddCardRequest) (*models.Board, *models.Card, error)
	EditCard(ctx context.Context, req EditCardRequest) (*models.Board, *models.Card, error)
	DeleteCard(ctx context.Context, boardID, listID, cardID string) (*models.Board, error)
	MoveCard(ctx context.Context, req MoveCardRequest) (*models.Board, error)

	// Append-only history
	AddComment(ctx context.Context, req AddCommentRequest) (*models.Board, error)

	// Blob store references
	AddAttachment(ctx context.Context, req AttachmentRequest) (*models.Board, error)
	RemoveAttachment(ctx context.Context, req AttachmentRequest) (*models.Board, error)
}

// AddCardRequest encapsulates data for appending a card to a list.
// Description and Labels are optional.
type AddCardRequest struct {
	BoardID     string
	ListID      string
	Title       string
	Description string
	Labels      []string
}

// EditCardRequest encapsulates a partial card update
type EditCardRequest struct {
	BoardID    string
	ListID     string
	CardID     string
	Updates    models.CardPatch
	EditorName string
}

// MoveCardRequest encapsulates data for moving a card within or across lists
type MoveCardRequest struct {
	BoardID      string
	CardID       string
	SourceListID string
	DestListID   string
	DestIndex    int
}

// AddCommentRequest encapsulates data for commenting on a card
type AddCommentRequest struct {
	BoardID    string
	ListID     string
	CardID     string
	AuthorName string
	Message    string
}

// AttachmentRequest names one attachment URL on a card
type AttachmentRequest struct {
	BoardID string
	ListID  string
	CardID  string
	URL     string
}

type service struct {
	store     *store.Store
	ids       types.IDGenerator
	publisher events.BoardPublisher
}

// NewService creates a new card service
func NewService(st *store.Store, ids types.IDGenerator, publisher events.BoardPublisher) Service {
	return &service{
		store:     st,
		ids:       ids,
		publisher: publisher,
	}
}

// AddCard appends a new card to the end of a list
func (s *service) AddCard(ctx context.Context, req AddCardRequest) (*models.Board, *models.Card, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, nil, err
	}

	var created *models.Card
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		l, _, err := b.FindList(req.ListID)
		if err != nil {
			return err
		}
		created = models.NewCard(s.ids.Next(), title)
		created.Description = req.Description
		created.Labels = models.UniqueStrings(req.Labels)
		l.Cards = append(l.Cards, created)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(board)
	return board, created, nil
}

// EditCard merges the supplied fields into a card. Fields left nil in the
// patch are untouched. A change to title, description, labels or
// assignments appends one activity entry naming the editor.
func (s *service) EditCard(ctx context.Context, req EditCardRequest) (*models.Board, *models.Card, error) {
	patch, err := normalizePatch(req.Updates)
	if err != nil {
		return nil, nil, err
	}
	editor := authorOrAnonymous(req.EditorName)

	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(req.ListID, req.CardID)
		if err != nil {
			return err
		}
		if patch.AssignedMembers != nil {
			for _, id := range *patch.AssignedMembers {
				if !b.HasMember(id) {
					return models.NotFound(models.KindMember, id)
				}
			}
		}

		changed, logged := applyPatch(c, patch)
		if !changed {
			return store.ErrUnchanged
		}
		if logged {
			c.ActivityLog = append(c.ActivityLog, &models.ActivityLogEntry{
				Message:   fmt.Sprintf("%s edited the card", editor),
				Timestamp: s.store.Now(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	_, edited, _, err := board.FindCard(req.ListID, req.CardID)
	if err != nil {
		return nil, nil, err
	}

	s.publish(board)
	return board, edited, nil
}

// DeleteCard removes a card from its list
func (s *service) DeleteCard(ctx context.Context, boardID, listID, cardID string) (*models.Board, error) {
	board, err := s.store.Update(ctx, boardID, func(b *models.Board) error {
		l, _, idx, err := b.FindCard(listID, cardID)
		if err != nil {
			return err
		}
		l.Cards, _ = position.RemoveAt(l.Cards, idx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// MoveCard removes a card from its source list and inserts it into the
// destination list at DestIndex. Within one list the removal happens first,
// so the index refers to the sequence without the moving card.
func (s *service) MoveCard(ctx context.Context, req MoveCardRequest) (*models.Board, error) {
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		src, _, from, err := b.FindCard(req.SourceListID, req.CardID)
		if err != nil {
			return err
		}
		dst, _, err := b.FindList(req.DestListID)
		if err != nil {
			return err
		}

		if src == dst {
			if position.Clamp(req.DestIndex, len(src.Cards)-1) == from {
				return store.ErrUnchanged
			}
			src.Cards = position.Move(src.Cards, from, req.DestIndex)
			return nil
		}
		src.Cards, dst.Cards = position.Transfer(src.Cards, from, dst.Cards, req.DestIndex)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// AddComment appends a comment. It always succeeds when the card exists;
// an empty author is recorded as Anonymous.
func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*models.Board, error) {
	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(req.ListID, req.CardID)
		if err != nil {
			return err
		}
		c.Comments = append(c.Comments, &models.Comment{
			AuthorName: authorOrAnonymous(req.AuthorName),
			Message:    req.Message,
			CreatedAt:  s.store.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// AddAttachment records a blob store URL on a card. Adding a URL that is
// already attached is a no-op.
func (s *service) AddAttachment(ctx context.Context, req AttachmentRequest) (*models.Board, error) {
	link, err := validateURL(req.URL)
	if err != nil {
		return nil, err
	}

	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(req.ListID, req.CardID)
		if err != nil {
			return err
		}
		for _, a := range c.Attachments {
			if a == link {
				return store.ErrUnchanged
			}
		}
		c.Attachments = append(c.Attachments, link)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// RemoveAttachment drops a URL from a card. Removing a URL that is not
// attached is a no-op.
func (s *service) RemoveAttachment(ctx context.Context, req AttachmentRequest) (*models.Board, error) {
	link := strings.TrimSpace(req.URL)

	board, err := s.store.Update(ctx, req.BoardID, func(b *models.Board) error {
		_, c, _, err := b.FindCard(req.ListID, req.CardID)
		if err != nil {
			return err
		}
		for i, a := range c.Attachments {
			if a == link {
				c.Attachments, _ = position.RemoveAt(c.Attachments, i)
				return nil
			}
		}
		return store.ErrUnchanged
	})
	if err != nil {
		return nil, err
	}

	s.publish(board)
	return board, nil
}

// normalizePatch validates the patch and collapses its sets
func normalizePatch(p models.CardPatch) (models.CardPatch, error) {
	if p.Title != nil {
		title, err := validateTitle(*p.Title)
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	if p.Labels != nil {
		labels := models.UniqueStrings(*p.Labels)
		p.Labels = &labels
	}
	if p.AssignedMembers != nil {
		assigned := models.UniqueStrings(*p.AssignedMembers)
		p.AssignedMembers = &assigned
	}
	if p.Attachments != nil {
		links := make([]string, 0, len(*p.Attachments))
		for _, raw := range *p.Attachments {
			link, err := validateURL(raw)
			if err != nil {
				return p, err
			}
			links = append(links, link)
		}
		links = models.UniqueStrings(links)
		p.Attachments = &links
	}
	return p, nil
}

// applyPatch merges p into c. changed reports any difference, logged
// reports a difference in a field that is recorded in the activity log.
func applyPatch(c *models.Card, p models.CardPatch) (changed, logged bool) {
	if p.Title != nil && *p.Title != c.Title {
		c.Title = *p.Title
		logged = true
	}
	if p.Description != nil && *p.Description != c.Description {
		c.Description = *p.Description
		logged = true
	}
	if p.Labels != nil && !models.SameStrings(*p.Labels, c.Labels) {
		c.Labels = *p.Labels
		logged = true
	}
	if p.AssignedMembers != nil && !models.SameStrings(*p.AssignedMembers, c.AssignedMembers) {
		c.AssignedMembers = *p.AssignedMembers
		logged = true
	}
	changed = logged
	if p.Attachments != nil && !models.SameStrings(*p.Attachments, c.Attachments) {
		c.Attachments = *p.Attachments
		changed = true
	}
	return changed, logged
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

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", models.Invalid(ErrInvalidURL)
	}
	return raw, nil
}

func authorOrAnonymous(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.AnonymousAuthor
	}
	return name
}

// publish hands a committed snapshot to the broadcast router
func (s *service) publish(board *models.Board) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBoard(board)
}
