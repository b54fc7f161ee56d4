package events

import (
	"encoding/json"

	"github.com/thenoetrevino/tablero/internal/models"
)

// EventType names an envelope on the wire
type EventType string

// Inbound mutation and room events
const (
	EventJoinBoard        EventType = "joinBoard"
	EventLeaveBoard       EventType = "leaveBoard"
	EventAddList          EventType = "addList"
	EventRenameList       EventType = "renameList"
	EventRemoveList       EventType = "removeList"
	EventMoveList         EventType = "moveList"
	EventAddCard          EventType = "addCard"
	EventEditCard         EventType = "editCard"
	EventDeleteCard       EventType = "deleteCard"
	EventMoveCard         EventType = "moveCard"
	EventAddComment       EventType = "addComment"
	EventAddAttachment    EventType = "addAttachment"
	EventRemoveAttachment EventType = "removeAttachment"
	EventAddSubtask       EventType = "addSubtask"
	EventToggleSubtask    EventType = "toggleSubtask"
	EventRenameSubtask    EventType = "renameSubtask"
	EventDeleteSubtask    EventType = "deleteSubtask"
	EventMoveSubtask      EventType = "moveSubtask"
	EventAddMember        EventType = "addMember"
	EventRenameMember     EventType = "renameMember"
	EventRemoveMember     EventType = "removeMember"
	EventAddAlert         EventType = "addAlert"
)

// Outbound events
const (
	EventAck          EventType = "ack"
	EventError        EventType = "error"
	EventBoardUpdated EventType = "boardUpdated"
	EventBoardDeleted EventType = "boardDeleted"
)

// Envelope wraps every message in both directions.
// Payload stays raw until the dispatcher knows which struct to decode into.
type Envelope struct {
	Type      EventType       `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *ProtocolError  `json:"error,omitempty"`
}

// BoardRef addresses a board (joinBoard, leaveBoard)
type BoardRef struct {
	BoardID string `json:"boardId"`
}

// AddListPayload is the payload of addList
type AddListPayload struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

// RenameListPayload is the payload of renameList
type RenameListPayload struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
	Name    string `json:"name"`
}

// ListRef addresses a list (removeList)
type ListRef struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
}

// MoveListPayload is the payload of moveList
type MoveListPayload struct {
	BoardID  string `json:"boardId"`
	ListID   string `json:"listId"`
	NewIndex *int   `json:"newIndex"`
}

// AddCardPayload is the payload of addCard
type AddCardPayload struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
	Title   string `json:"title"`
}

// EditCardPayload is the payload of editCard
type EditCardPayload struct {
	BoardID    string           `json:"boardId"`
	ListID     string           `json:"listId"`
	CardID     string           `json:"cardId"`
	Updates    models.CardPatch `json:"updates"`
	EditorName string           `json:"editorName"`
}

// CardRef addresses a card (deleteCard)
type CardRef struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
	CardID  string `json:"cardId"`
}

// MoveCardPayload is the payload of moveCard
type MoveCardPayload struct {
	BoardID      string `json:"boardId"`
	CardID       string `json:"cardId"`
	SourceListID string `json:"sourceListId"`
	DestListID   string `json:"destListId"`
	DestIndex    *int   `json:"destIndex"`
}

// AddCommentPayload is the payload of addComment
type AddCommentPayload struct {
	BoardID    string `json:"boardId"`
	ListID     string `json:"listId"`
	CardID     string `json:"cardId"`
	AuthorName string `json:"authorName"`
	Message    string `json:"message"`
}

// AttachmentPayload is the payload of addAttachment and removeAttachment
type AttachmentPayload struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
	CardID  string `json:"cardId"`
	URL     string `json:"url"`
}

// AddSubtaskPayload is the payload of addSubtask
type AddSubtaskPayload struct {
	BoardID string `json:"boardId"`
	ListID  string `json:"listId"`
	CardID  string `json:"cardId"`
	Title   string `json:"title"`
}

// SubtaskRef addresses a subtask (toggleSubtask, deleteSubtask)
type SubtaskRef struct {
	BoardID   string `json:"boardId"`
	ListID    string `json:"listId"`
	CardID    string `json:"cardId"`
	SubtaskID string `json:"subtaskId"`
}

// RenameSubtaskPayload is the payload of renameSubtask
type RenameSubtaskPayload struct {
	BoardID   string `json:"boardId"`
	ListID    string `json:"listId"`
	CardID    string `json:"cardId"`
	SubtaskID string `json:"subtaskId"`
	Title     string `json:"title"`
}

// MoveSubtaskPayload is the payload of moveSubtask
type MoveSubtaskPayload struct {
	BoardID   string `json:"boardId"`
	ListID    string `json:"listId"`
	CardID    string `json:"cardId"`
	SubtaskID string `json:"subtaskId"`
	NewIndex  *int   `json:"newIndex"`
}

// AddMemberPayload is the payload of addMember
type AddMemberPayload struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

// RenameMemberPayload is the payload of renameMember
type RenameMemberPayload struct {
	BoardID  string `json:"boardId"`
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

// MemberRef addresses a member (removeMember)
type MemberRef struct {
	BoardID  string `json:"boardId"`
	MemberID string `json:"memberId"`
}

// AddAlertPayload is the payload of addAlert
type AddAlertPayload struct {
	BoardID    string `json:"boardId"`
	AuthorName string `json:"authorName"`
	Message    string `json:"message"`
}

// BoardDeletedPayload tells room members a board is gone
type BoardDeletedPayload struct {
	BoardID string `json:"boardId"`
}
