package models

// Card is a single item on a list
type Card struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Labels          []string            `json:"labels"`
	AssignedMembers []string            `json:"assignedMembers"` // weak references to Member.ID
	Comments        []*Comment          `json:"comments"`
	ActivityLog     []*ActivityLogEntry `json:"activityLog"`
	Attachments     []string            `json:"attachments"` // blob store URLs
	Subtasks        []*Subtask          `json:"subtasks"`
}

// NewCard returns a card with every collection initialised
func NewCard(id, title string) *Card {
	return &Card{
		ID:              id,
		Title:           title,
		Labels:          []string{},
		AssignedMembers: []string{},
		Comments:        []*Comment{},
		ActivityLog:     []*ActivityLogEntry{},
		Attachments:     []string{},
		Subtasks:        []*Subtask{},
	}
}

// CardPatch carries a partial card update.
// Fields with pointers are optional - nil means don't update.
type CardPatch struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Labels          *[]string `json:"labels,omitempty"`
	AssignedMembers *[]string `json:"assignedMembers,omitempty"`
	Attachments     *[]string `json:"attachments,omitempty"`
}

// Empty reports whether the patch names no field at all
func (p CardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Labels == nil &&
		p.AssignedMembers == nil && p.Attachments == nil
}

// FindSubtask locates a subtask by id
func (c *Card) FindSubtask(subtaskID string) (*Subtask, int, error) {
	for i, s := range c.Subtasks {
		if s.ID == subtaskID {
			return s, i, nil
		}
	}
	return nil, -1, NotFound(KindSubtask, subtaskID)
}

// Unassign drops memberID from the assignment set, reporting whether it was present
func (c *Card) Unassign(memberID string) bool {
	for i, id := range c.AssignedMembers {
		if id == memberID {
			c.AssignedMembers = append(c.AssignedMembers[:i], c.AssignedMembers[i+1:]...)
			return true
		}
	}
	return false
}

// UniqueStrings collapses duplicates and blanks, keeping first occurrence order
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SameStrings reports whether a and b hold the same values in the same order
func SameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
