package models

// Clone returns a deep copy of the board. Mutation handlers work on a clone
// so that a failed request never leaves a half-mutated tree behind.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := *b
	out.Lists = make([]*List, len(b.Lists))
	for i, l := range b.Lists {
		out.Lists[i] = l.Clone()
	}
	out.Members = make([]*Member, len(b.Members))
	for i, m := range b.Members {
		out.Members[i] = clonePtr(m)
	}
	out.Alerts = make([]*Alert, len(b.Alerts))
	for i, a := range b.Alerts {
		out.Alerts[i] = clonePtr(a)
	}
	return &out
}

// Clone returns a deep copy of the list
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	out := *l
	out.Cards = make([]*Card, len(l.Cards))
	for i, c := range l.Cards {
		out.Cards[i] = c.Clone()
	}
	return &out
}

// Clone returns a deep copy of the card
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	out := *c
	out.Labels = cloneStrings(c.Labels)
	out.AssignedMembers = cloneStrings(c.AssignedMembers)
	out.Attachments = cloneStrings(c.Attachments)
	out.Comments = make([]*Comment, len(c.Comments))
	for i, cm := range c.Comments {
		out.Comments[i] = clonePtr(cm)
	}
	out.ActivityLog = make([]*ActivityLogEntry, len(c.ActivityLog))
	for i, e := range c.ActivityLog {
		out.ActivityLog[i] = clonePtr(e)
	}
	out.Subtasks = make([]*Subtask, len(c.Subtasks))
	for i, s := range c.Subtasks {
		out.Subtasks[i] = clonePtr(s)
	}
	return &out
}

// clonePtr copies a flat struct; nil stays nil
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
