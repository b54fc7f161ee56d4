package events

import (
	"errors"
	"net"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Decoding errors. Both are reported to the requester as VALIDATION_FAILED.
var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownEvent = errors.New("unknown event type")
)

// ErrorCode is the machine readable part of an error envelope
type ErrorCode string

const (
	CodeBoardNotFound    ErrorCode = "BOARD_NOT_FOUND"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternal         ErrorCode = "INTERNAL"
)

// ProtocolError is the body of an error envelope. Entity names the missing
// entity kind for NOT_FOUND.
type ProtocolError struct {
	Code    ErrorCode `json:"code"`
	Entity  string    `json:"entity,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is lets errors.Is match the domain sentinels on the client side
func (e *ProtocolError) Is(target error) bool {
	switch e.Code {
	case CodeBoardNotFound, CodeNotFound:
		return target == models.ErrNotFound
	case CodeValidationFailed:
		return target == models.ErrValidation
	}
	return false
}

// ClassifyError maps a handler or decode failure to its wire form.
// Unknown errors become INTERNAL with a generic message.
func ClassifyError(err error) *ProtocolError {
	if err == nil {
		return nil
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe
	}

	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		if nf.Kind == models.KindBoard {
			return &ProtocolError{Code: CodeBoardNotFound, Entity: string(nf.Kind), Message: nf.Error()}
		}
		return &ProtocolError{Code: CodeNotFound, Entity: string(nf.Kind), Message: nf.Error()}
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return &ProtocolError{Code: CodeValidationFailed, Message: ve.Reason}
	}
	if errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownEvent) {
		return &ProtocolError{Code: CodeValidationFailed, Message: err.Error()}
	}

	return &ProtocolError{Code: CodeInternal, Message: "internal error"}
}

// DaemonErrorCode represents connection failures seen by clients.
type DaemonErrorCode int

const (
	ErrDaemonNotRunning DaemonErrorCode = iota
	ErrConnectionRefused
	ErrHandshakeRejected
	ErrHostUnknown
)

// DaemonError represents a structured connection error with a hint.
type DaemonError struct {
	Code    DaemonErrorCode
	Message string
	Hint    string
}

// Error implements the error interface.
func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

// ClassifyDaemonError maps dial failures to structured DaemonError types.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	var de *DaemonError
	if errors.As(err, &de) {
		return de
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &DaemonError{
			Code:    ErrHandshakeRejected,
			Message: "Server rejected the websocket handshake",
			Hint:    "Check that the URL points at the /ws endpoint of a tablero daemon",
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DaemonError{
			Code:    ErrHostUnknown,
			Message: "Unknown host " + dnsErr.Name,
			Hint:    "Check client.server_url in config.yaml or --server",
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return &DaemonError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "Start the daemon: tablero-daemon",
		}
	}

	return &DaemonError{
		Code:    ErrDaemonNotRunning,
		Message: "Daemon not reachable",
		Hint:    "Start the daemon: tablero-daemon",
	}
}
