package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

// ============================================================================
// Success
// ============================================================================

func TestOutputFormatter_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		json  bool
		quiet bool
		check func(t *testing.T, out string)
	}{
		{"human", false, false, func(t *testing.T, out string) {
			assert.Equal(t, "created b1\n", out)
		}},
		{"quiet", false, true, func(t *testing.T, out string) {
			assert.Equal(t, "b1\n", out)
		}},
		{"json", true, false, func(t *testing.T, out string) {
			result := testutil.ParseJSON(t, out)
			assert.Equal(t, true, result["success"])
			assert.Equal(t, map[string]any{"id": "b1"}, result["board"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			f := &OutputFormatter{JSON: tt.json, Quiet: tt.quiet, Out: &out}
			require.NoError(t, f.Success("board", map[string]string{"id": "b1"}, "b1", "created b1"))
			tt.check(t, out.String())
		})
	}
}

func TestOutputFormatter_QuietWithoutID(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	f := &OutputFormatter{Quiet: true, Out: &out}

	require.NoError(t, f.Success("boardId", "b1", "", "deleted"))
	assert.Empty(t, out.String())
}

// ============================================================================
// Errors
// ============================================================================

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	f := &OutputFormatter{JSON: true, Out: &out}

	require.NoError(t, f.ErrorWithSuggestion("NOT_FOUND", "card c9 not found", "run board show"))
	result := testutil.ParseJSON(t, out.String())
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errData["code"])
	assert.Equal(t, "run board show", errData["suggestion"])
}

func TestOutputFormatter_ErrorHuman(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Out: &out, Err: &errOut}

	require.NoError(t, f.ErrorWithSuggestion("X", "went wrong", "try again"))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: went wrong")
	assert.Contains(t, errOut.String(), "Suggestion: try again")
}

func TestOutputFormatter_FailDaemonError(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	f := &OutputFormatter{JSON: true, Out: &out}

	de := &events.DaemonError{Message: "Connection refused", Hint: "Start the daemon"}
	err := f.Fail(de)
	assert.ErrorIs(t, err, de)

	errData := testutil.ParseJSON(t, out.String())["error"].(map[string]any)
	assert.Equal(t, "DAEMON_UNAVAILABLE", errData["code"])
	assert.Equal(t, "Start the daemon", errData["suggestion"])
}

func TestReport_SkipsReportedErrors(t *testing.T) {
	t.Parallel()
	var errOut bytes.Buffer

	reported := (&OutputFormatter{Err: &bytes.Buffer{}}).Fail(errors.New("already shown"))
	Report(&errOut, reported)
	assert.Empty(t, errOut.String())

	Report(&errOut, errors.New("fresh"))
	assert.Contains(t, errOut.String(), "Error: fresh")
}
