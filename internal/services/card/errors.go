package card

import "errors"

// Card-related errors
var (
	// Validation errors
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title cannot exceed 255 characters")
	ErrInvalidURL   = errors.New("attachment must be an absolute http(s) URL")
)
