package models

import "time"

// Member is a participant known to a board. Cards reference members by id only.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subtask is a checklist item on a card
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Alert is a board-wide notice. Alerts are append-only.
type Alert struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Length limits for user supplied text
const (
	MaxNameLength  = 100
	MaxTitleLength = 255
)
