package models

import (
	"errors"
	"fmt"
)

// Base errors matched with errors.Is by the gateway and the REST layer
var (
	// ErrNotFound is matched by every *NotFoundError
	ErrNotFound = errors.New("not found")

	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
)

// EntityKind names the kind of entity a lookup failed on
type EntityKind string

const (
	KindBoard   EntityKind = "board"
	KindList    EntityKind = "list"
	KindCard    EntityKind = "card"
	KindSubtask EntityKind = "subtask"
	KindMember  EntityKind = "member"
)

// NotFoundError reports a missing board or descendant entity
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

// NotFound builds a NotFoundError
func NotFound(kind EntityKind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a rejected request or document
type ValidationError struct {
	Reason string
	Err    error // optional underlying sentinel
}

// Invalid wraps a sentinel error as a ValidationError
func Invalid(err error) *ValidationError {
	return &ValidationError{Reason: err.Error(), Err: err}
}

// Invalidf builds a ValidationError from a format string
func Invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found failure of any kind
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBoardNotFound reports whether err is specifically a missing board
func IsBoardNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == KindBoard
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
