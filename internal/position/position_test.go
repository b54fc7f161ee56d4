package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Clamp(-3, 4))
	assert.Equal(t, 2, Clamp(2, 4))
	assert.Equal(t, 4, Clamp(9, 4))
	assert.Equal(t, 0, Clamp(5, 0))
}

func TestInsertAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    []string
		index int
		want  []string
	}{
		{"front", []string{"a", "b"}, 0, []string{"x", "a", "b"}},
		{"middle", []string{"a", "b"}, 1, []string{"a", "x", "b"}},
		{"end", []string{"a", "b"}, 2, []string{"a", "b", "x"}},
		{"past end", []string{"a", "b"}, 10, []string{"a", "b", "x"}},
		{"negative", []string{"a", "b"}, -1, []string{"x", "a", "b"}},
		{"empty", nil, 3, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertAt(tt.in, tt.index, "x"))
		})
	}
}

func TestRemoveAt(t *testing.T) {
	t.Parallel()

	s, v := RemoveAt([]string{"a", "b", "c"}, 1)
	assert.Equal(t, "b", v)
	assert.Equal(t, []string{"a", "c"}, s)
}

func TestMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"C2", "C3", "C1"}},
		{"last to first", 2, 0, []string{"C3", "C1", "C2"}},
		{"same position", 1, 1, []string{"C1", "C2", "C3"}},
		{"clamped past end", 0, 99, []string{"C2", "C3", "C1"}},
		{"clamped negative", 2, -4, []string{"C3", "C1", "C2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Move([]string{"C1", "C2", "C3"}, tt.from, tt.to)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	src, dst := Transfer([]string{"a", "b"}, 0, []string{"x", "y"}, 1)
	assert.Equal(t, []string{"b"}, src)
	assert.Equal(t, []string{"x", "a", "y"}, dst)

	src, dst = Transfer([]string{"a"}, 0, nil, 5)
	assert.Empty(t, src)
	assert.Equal(t, []string{"a"}, dst)
}

func TestMove_ConservesElements(t *testing.T) {
	t.Parallel()

	s := []int{0, 1, 2, 3, 4, 5, 6}
	for i := 0; i < 50; i++ {
		s = Move(s, (i*3)%len(s), (i*5)%9-1)
	}
	seen := make(map[int]bool)
	for _, v := range s {
		assert.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 7)
}
