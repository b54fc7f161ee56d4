package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/thenoetrevino/tablero/internal/events"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs a successful result. key names the payload in JSON mode;
// human is printed otherwise, and only the id in quiet mode.
func (f *OutputFormatter) Success(key string, data any, id string, human string) error {
	if f.Quiet {
		if id != "" {
			_, err := fmt.Fprintln(f.out(), id)
			return err
		}
		return nil
	}

	if f.JSON {
		return f.encode(map[string]any{
			"success": true,
			key:       data,
		})
	}

	_, err := fmt.Fprintln(f.out(), human)
	return err
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return f.encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.errOut(), "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.errOut(), "Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail reports err in the current mode and hands it back for the exit code
func (f *OutputFormatter) Fail(err error) error {
	code, suggestion := errorCode(err)
	_ = f.ErrorWithSuggestion(code, err.Error(), suggestion)
	return &reportedError{err: err}
}

// reportedError is an error already shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Report prints err unless a command already did
func Report(w io.Writer, err error) {
	var reported *reportedError
	if err == nil || errors.As(err, &reported) {
		return
	}
	f := &OutputFormatter{Err: w}
	code, suggestion := errorCode(err)
	_ = f.ErrorWithSuggestion(code, err.Error(), suggestion)
}

func errorCode(err error) (string, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, ""
	}
	var de *events.DaemonError
	if errors.As(err, &de) {
		return "DAEMON_UNAVAILABLE", de.Hint
	}
	var pe *events.ProtocolError
	if errors.As(err, &pe) {
		return string(pe.Code), ""
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return "USAGE", ""
	}
	var data *DataError
	if errors.As(err, &data) {
		return "BAD_INPUT", ""
	}
	return "ERROR", ""
}

func (f *OutputFormatter) encode(v any) error {
	return sonic.ConfigStd.NewEncoder(f.out()).Encode(v)
}
