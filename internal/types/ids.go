package types

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Identifier formats accepted by NewGenerator.
const (
	FormatUUID = "uuid"
	FormatULID = "ulid"
)

// IDGenerator issues opaque identifiers for boards, lists, cards, subtasks,
// members and alerts. Callers must not assume ids sort by creation time.
type IDGenerator interface {
	Next() string
}

// NewGenerator returns the generator for the given format.
// Unknown or empty formats fall back to UUIDs.
func NewGenerator(format string) IDGenerator {
	switch strings.ToLower(format) {
	case FormatULID:
		return NewULIDGenerator()
	default:
		return NewUUIDGenerator()
	}
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a UUID based generator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Next returns a fresh UUID string
func (UUIDGenerator) Next() string {
	return uuid.NewString()
}

// ULIDGenerator issues ULIDs from a monotonic entropy source so that two ids
// minted in the same millisecond never collide.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a ULID based generator
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next returns a fresh ULID string
func (g *ULIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Now(), g.entropy)
	if err != nil {
		// monotonic overflow inside one millisecond
		return ulid.Make().String()
	}
	return id.String()
}
