package cli

import (
	"errors"
	"net/http"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/launcher"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: network errors, daemon failures, or any error that doesn't
	// fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: missing arguments or flags, invalid flag combinations.
	ExitUsage = 2

	// ExitNotFound indicates a requested board or entity does not exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: an import file that is not a board document.
	ExitDataErr = 4

	// ExitValidation indicates the daemon rejected the input.
	ExitValidation = 5
)

// UsageError marks a command line mistake
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// DataError marks input that could not be parsed
type DataError struct {
	Err error
}

func (e *DataError) Error() string { return e.Err.Error() }
func (e *DataError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	var data *DataError
	if errors.As(err, &data) {
		return ExitDataErr
	}

	if errors.Is(err, launcher.ErrBoardDeleted) {
		return ExitNotFound
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if code := codeExit(events.ErrorCode(apiErr.Code)); code != ExitError {
			return code
		}
		if apiErr.Status == http.StatusBadRequest {
			return ExitDataErr
		}
		return ExitError
	}

	var pe *events.ProtocolError
	if errors.As(err, &pe) {
		return codeExit(pe.Code)
	}
	return ExitError
}

func codeExit(code events.ErrorCode) int {
	switch code {
	case events.CodeBoardNotFound, events.CodeNotFound:
		return ExitNotFound
	case events.CodeValidationFailed:
		return ExitValidation
	}
	return ExitError
}
