package daemon

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/alert"
	"github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/services/list"
	"github.com/thenoetrevino/tablero/internal/services/subtask"
)

// handlerFunc runs one inbound event. The returned value, when non-nil,
// is the ack payload.
type handlerFunc func(ctx context.Context, c *session, env *events.Envelope) (any, error)

func (s *Server) handlers() map[events.EventType]handlerFunc {
	return map[events.EventType]handlerFunc{
		events.EventJoinBoard:        s.joinBoard,
		events.EventLeaveBoard:       s.leaveBoard,
		events.EventAddList:          s.addList,
		events.EventRenameList:       s.renameList,
		events.EventRemoveList:       s.removeList,
		events.EventMoveList:         s.moveList,
		events.EventAddCard:          s.addCard,
		events.EventEditCard:         s.editCard,
		events.EventDeleteCard:       s.deleteCard,
		events.EventMoveCard:         s.moveCard,
		events.EventAddComment:       s.addComment,
		events.EventAddAttachment:    s.addAttachment,
		events.EventRemoveAttachment: s.removeAttachment,
		events.EventAddSubtask:       s.addSubtask,
		events.EventToggleSubtask:    s.toggleSubtask,
		events.EventRenameSubtask:    s.renameSubtask,
		events.EventDeleteSubtask:    s.deleteSubtask,
		events.EventMoveSubtask:      s.moveSubtask,
		events.EventAddMember:        s.addMember,
		events.EventRenameMember:     s.renameMember,
		events.EventRemoveMember:     s.removeMember,
		events.EventAddAlert:         s.addAlert,
	}
}

// handleFrame decodes and dispatches one inbound frame. Successes are
// acknowledged to the originator only; the snapshot reaches the room
// through the router. Failures go to the originator only.
func (s *Server) handleFrame(ctx context.Context, c *session, data []byte) {
	s.metrics.IncEventsReceived()

	env, err := events.Decode(data)
	if err != nil {
		s.replyError(c, "", err)
		return
	}

	entry := c.log.WithFields(log.Fields{"event": env.Type, "request_id": env.RequestID})

	handle, ok := s.dispatch[env.Type]
	if !ok {
		s.replyError(c, env.RequestID, events.ErrUnknownEvent)
		return
	}

	created, err := handle(ctx, c, env)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		s.replyError(c, env.RequestID, err)
		return
	}

	frame, err := events.EncodeAck(env.RequestID, created)
	if err != nil {
		entry.WithError(err).Error("failed to encode ack")
		s.replyError(c, env.RequestID, err)
		return
	}
	c.reply(frame)
}

func (s *Server) replyError(c *session, requestID string, err error) {
	pe := events.ClassifyError(err)
	if pe.Code == events.CodeInternal {
		c.log.WithError(err).WithField("request_id", requestID).Error("internal error")
	}
	frame, encErr := events.EncodeError(requestID, pe)
	if encErr != nil {
		c.log.WithError(encErr).Error("failed to encode error reply")
		return
	}
	s.metrics.IncErrorsReplied()
	c.reply(frame)
}

// index unwraps a required position field
func index(p *int, field string) (int, error) {
	if p == nil {
		return 0, models.Invalidf("%s is required", field)
	}
	return *p, nil
}

// ============================================================================
// Rooms
// ============================================================================

// joinBoard subscribes first and then reads the snapshot, so no commit can
// fall between the read and the subscription. The snapshot is delivered
// privately under the same version ordering as broadcasts.
func (s *Server) joinBoard(ctx context.Context, c *session, env *events.Envelope) (any, error) {
	var p events.BoardRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}

	router := s.app.Router
	router.Join(c, p.BoardID)

	board, err := s.app.Store.Get(ctx, p.BoardID)
	if err != nil {
		router.Leave(c, p.BoardID)
		return nil, err
	}

	frame, err := events.EncodeBoardUpdated(board)
	if err != nil {
		router.Leave(c, p.BoardID)
		return nil, err
	}
	router.Deliver(c, board.ID, board.Version, frame)

	c.log.WithField("board_id", board.ID).Debug("joined board")
	return nil, nil
}

func (s *Server) leaveBoard(_ context.Context, c *session, env *events.Envelope) (any, error) {
	var p events.BoardRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	s.app.Router.Leave(c, p.BoardID)
	return nil, nil
}

// ============================================================================
// Lists
// ============================================================================

func (s *Server) addList(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddListPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, created, err := s.app.ListService.AddList(ctx, list.AddListRequest{BoardID: p.BoardID, Name: p.Name})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Server) renameList(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.RenameListPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.ListService.RenameList(ctx, list.RenameListRequest{BoardID: p.BoardID, ListID: p.ListID, Name: p.Name})
	return nil, err
}

func (s *Server) removeList(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.ListRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.ListService.RemoveList(ctx, p.BoardID, p.ListID)
	return nil, err
}

func (s *Server) moveList(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.MoveListPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	idx, err := index(p.NewIndex, "newIndex")
	if err != nil {
		return nil, err
	}
	_, err = s.app.ListService.MoveList(ctx, list.MoveListRequest{BoardID: p.BoardID, ListID: p.ListID, NewIndex: idx})
	return nil, err
}

// ============================================================================
// Cards
// ============================================================================

func (s *Server) addCard(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddCardPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, created, err := s.app.CardService.AddCard(ctx, card.AddCardRequest{BoardID: p.BoardID, ListID: p.ListID, Title: p.Title})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Server) editCard(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.EditCardPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, _, err := s.app.CardService.EditCard(ctx, card.EditCardRequest{
		BoardID:    p.BoardID,
		ListID:     p.ListID,
		CardID:     p.CardID,
		Updates:    p.Updates,
		EditorName: p.EditorName,
	})
	return nil, err
}

func (s *Server) deleteCard(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.CardRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.CardService.DeleteCard(ctx, p.BoardID, p.ListID, p.CardID)
	return nil, err
}

func (s *Server) moveCard(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.MoveCardPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	idx, err := index(p.DestIndex, "destIndex")
	if err != nil {
		return nil, err
	}
	_, err = s.app.CardService.MoveCard(ctx, card.MoveCardRequest{
		BoardID:      p.BoardID,
		CardID:       p.CardID,
		SourceListID: p.SourceListID,
		DestListID:   p.DestListID,
		DestIndex:    idx,
	})
	return nil, err
}

func (s *Server) addComment(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddCommentPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.CardService.AddComment(ctx, card.AddCommentRequest{
		BoardID:    p.BoardID,
		ListID:     p.ListID,
		CardID:     p.CardID,
		AuthorName: p.AuthorName,
		Message:    p.Message,
	})
	return nil, err
}

func (s *Server) addAttachment(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AttachmentPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.CardService.AddAttachment(ctx, card.AttachmentRequest{BoardID: p.BoardID, ListID: p.ListID, CardID: p.CardID, URL: p.URL})
	return nil, err
}

func (s *Server) removeAttachment(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AttachmentPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.CardService.RemoveAttachment(ctx, card.AttachmentRequest{BoardID: p.BoardID, ListID: p.ListID, CardID: p.CardID, URL: p.URL})
	return nil, err
}

// ============================================================================
// Subtasks
// ============================================================================

func (s *Server) addSubtask(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddSubtaskPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, created, err := s.app.SubtaskService.AddSubtask(ctx, subtask.AddSubtaskRequest{
		BoardID: p.BoardID,
		ListID:  p.ListID,
		CardID:  p.CardID,
		Title:   p.Title,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func subtaskRef(p events.SubtaskRef) subtask.Ref {
	return subtask.Ref{BoardID: p.BoardID, ListID: p.ListID, CardID: p.CardID, SubtaskID: p.SubtaskID}
}

func (s *Server) toggleSubtask(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.SubtaskRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.SubtaskService.ToggleSubtask(ctx, subtaskRef(p))
	return nil, err
}

func (s *Server) renameSubtask(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.RenameSubtaskPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	ref := subtask.Ref{BoardID: p.BoardID, ListID: p.ListID, CardID: p.CardID, SubtaskID: p.SubtaskID}
	_, err := s.app.SubtaskService.RenameSubtask(ctx, ref, p.Title)
	return nil, err
}

func (s *Server) deleteSubtask(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.SubtaskRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.SubtaskService.DeleteSubtask(ctx, subtaskRef(p))
	return nil, err
}

func (s *Server) moveSubtask(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.MoveSubtaskPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	idx, err := index(p.NewIndex, "newIndex")
	if err != nil {
		return nil, err
	}
	ref := subtask.Ref{BoardID: p.BoardID, ListID: p.ListID, CardID: p.CardID, SubtaskID: p.SubtaskID}
	_, err = s.app.SubtaskService.MoveSubtask(ctx, ref, idx)
	return nil, err
}

// ============================================================================
// Members and alerts
// ============================================================================

func (s *Server) addMember(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddMemberPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, created, err := s.app.MemberService.AddMember(ctx, p.BoardID, p.Name)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Server) renameMember(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.RenameMemberPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.MemberService.RenameMember(ctx, p.BoardID, p.MemberID, p.Name)
	return nil, err
}

func (s *Server) removeMember(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.MemberRef
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, err := s.app.MemberService.RemoveMember(ctx, p.BoardID, p.MemberID)
	return nil, err
}

func (s *Server) addAlert(ctx context.Context, _ *session, env *events.Envelope) (any, error) {
	var p events.AddAlertPayload
	if err := events.DecodePayload(env, &p); err != nil {
		return nil, err
	}
	_, a, err := s.app.AlertService.AddAlert(ctx, alert.AddAlertRequest{
		BoardID:    p.BoardID,
		AuthorName: p.AuthorName,
		Message:    p.Message,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
