package events

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/thenoetrevino/tablero/internal/models"
)

// codec is encoding/json compatible so RawMessage and struct tags behave
// exactly as the standard library would
var codec = sonic.ConfigStd

// Marshal encodes v with the protocol codec
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes data with the protocol codec
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Decode parses one inbound frame
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &env, nil
}

// DecodePayload unmarshals the envelope payload into v
func DecodePayload(env *Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%w: %s without payload", ErrMalformed, env.Type)
	}
	if err := codec.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
	}
	return nil
}

// Encode builds and serializes an envelope. A nil payload is omitted.
func Encode(t EventType, requestID string, payload any) ([]byte, error) {
	env := Envelope{Type: t, RequestID: requestID}
	if payload != nil {
		raw, err := codec.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return codec.Marshal(&env)
}

// EncodeAck serializes an acknowledgement
func EncodeAck(requestID string, created any) ([]byte, error) {
	return Encode(EventAck, requestID, created)
}

// EncodeError serializes a private error reply
func EncodeError(requestID string, pe *ProtocolError) ([]byte, error) {
	return codec.Marshal(&Envelope{Type: EventError, RequestID: requestID, Error: pe})
}

// EncodeBoardUpdated serializes a full board snapshot
func EncodeBoardUpdated(board *models.Board) ([]byte, error) {
	return Encode(EventBoardUpdated, "", board)
}

// EncodeBoardDeleted serializes a board deletion notice
func EncodeBoardDeleted(boardID string) ([]byte, error) {
	return Encode(EventBoardDeleted, "", BoardDeletedPayload{BoardID: boardID})
}
