package board

import "errors"

// Board-related errors
var (
	// Validation errors
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrNameTooLong   = errors.New("name cannot exceed 100 characters")
	ErrEmptyListName = errors.New("initial list names cannot be empty")
	ErrEmptyDocument = errors.New("board document is required")
)
