// Package position implements the ordering rules shared by lists, cards and
// subtasks: insertion at i shifts later entries right, removal shifts them
// left, and move targets are clamped instead of rejected.
package position

// Clamp bounds an insertion index to [0, length]
func Clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// InsertAt places v at index (clamped) and returns the new slice
func InsertAt[T any](s []T, index int, v T) []T {
	index = Clamp(index, len(s))
	var zero T
	s = append(s, zero)
	copy(s[index+1:], s[index:])
	s[index] = v
	return s
}

// RemoveAt removes the element at index and returns the new slice and the
// removed element. The caller guarantees index is in range.
func RemoveAt[T any](s []T, index int) ([]T, T) {
	v := s[index]
	copy(s[index:], s[index+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1], v
}

// Move relocates the element at from so that it ends up at position to.
// The element is removed first and to is clamped against the shortened
// slice, which is what makes reordering within one sequence land correctly.
func Move[T any](s []T, from, to int) []T {
	s, v := RemoveAt(s, from)
	return InsertAt(s, to, v)
}

// Transfer moves the element at from in src into dst at index to and
// returns both new slices. src and dst must be distinct sequences.
func Transfer[T any](src []T, from int, dst []T, to int) ([]T, []T) {
	src, v := RemoveAt(src, from)
	dst = InsertAt(dst, to, v)
	return src, dst
}
