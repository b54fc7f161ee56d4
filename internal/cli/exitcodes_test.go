package cli

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/launcher"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitError},
		{"usage", &UsageError{Msg: "x"}, ExitUsage},
		{"data", &DataError{Err: errors.New("x")}, ExitDataErr},
		{"board not found", &APIError{Status: http.StatusNotFound, Code: "BOARD_NOT_FOUND"}, ExitNotFound},
		{"entity not found", &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND"}, ExitNotFound},
		{"validation", &APIError{Status: http.StatusUnprocessableEntity, Code: "VALIDATION_FAILED"}, ExitValidation},
		{"bad request", &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST"}, ExitDataErr},
		{"server error", &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL"}, ExitError},
		{"protocol not found", fmt.Errorf("join: %w", &events.ProtocolError{Code: events.CodeBoardNotFound}), ExitNotFound},
		{"protocol validation", &events.ProtocolError{Code: events.CodeValidationFailed}, ExitValidation},
		{"board deleted", fmt.Errorf("board b1: %w", launcher.ErrBoardDeleted), ExitNotFound},
		{"daemon down", &events.DaemonError{Code: events.ErrConnectionRefused}, ExitError},
		{"reported", (&OutputFormatter{Quiet: true, Err: discard{}}).Fail(&UsageError{Msg: "x"}), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
