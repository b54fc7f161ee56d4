package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators_Unique(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  IDGenerator
	}{
		{"uuid", NewGenerator(FormatUUID)},
		{"ulid", NewGenerator(FormatULID)},
		{"fallback", NewGenerator("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]struct{}, 5000)
			for i := 0; i < 5000; i++ {
				id := tt.gen.Next()
				require.NotEmpty(t, id)
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %s", id)
				seen[id] = struct{}{}
			}
		})
	}
}

func TestGenerators_ConcurrentUse(t *testing.T) {
	t.Parallel()

	for _, gen := range []IDGenerator{NewUUIDGenerator(), NewULIDGenerator()} {
		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			seen = make(map[string]struct{})
		)
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				local := make([]string, 0, 500)
				for i := 0; i < 500; i++ {
					local = append(local, gen.Next())
				}
				mu.Lock()
				for _, id := range local {
					seen[id] = struct{}{}
				}
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 8*500)
	}
}

func TestNewGenerator_Format(t *testing.T) {
	t.Parallel()

	_, isULID := NewGenerator("ULID").(*ULIDGenerator)
	assert.True(t, isULID, "format matching should be case insensitive")

	_, isUUID := NewGenerator("something-else").(*UUIDGenerator)
	assert.True(t, isUUID)

	assert.Len(t, NewULIDGenerator().Next(), 26)
	assert.Len(t, NewUUIDGenerator().Next(), 36)
}
