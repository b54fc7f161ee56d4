package models

import "time"

// Comment represents a note on a card. Comments are immutable and
// append-only; AuthorName is free text, not a member reference, so it
// survives member removal.
type Comment struct {
	AuthorName string    `json:"authorName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ActivityLogEntry is a system generated line in a card's history
type ActivityLogEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AnonymousAuthor is used when a participant does not identify itself
const AnonymousAuthor = "Anonymous"
