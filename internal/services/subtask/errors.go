package subtask

import "errors"

// Subtask-related errors
var (
	// Validation errors
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title cannot exceed 255 characters")
)
