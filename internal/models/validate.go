package models

import "strings"

// Validate checks a whole board document before it replaces a stored board.
// Every id must be present and unique, required names must be present and
// every assigned member id must name a member of the board. The first
// problem found is returned as a *ValidationError.
func (b *Board) Validate() error {
	if b == nil {
		return Invalidf("board document is empty")
	}
	if strings.TrimSpace(b.Name) == "" {
		return Invalidf("board name cannot be empty")
	}

	ids := make(map[string]string)
	claim := func(kind EntityKind, id string) error {
		if id == "" {
			return Invalidf("%s without id", kind)
		}
		if prev, dup := ids[id]; dup {
			return Invalidf("duplicate id %q used by %s and %s", id, prev, kind)
		}
		ids[id] = string(kind)
		return nil
	}

	members := make(map[string]struct{}, len(b.Members))
	for _, m := range b.Members {
		if m == nil {
			return Invalidf("null member entry")
		}
		if err := claim(KindMember, m.ID); err != nil {
			return err
		}
		if strings.TrimSpace(m.Name) == "" {
			return Invalidf("member %q has an empty name", m.ID)
		}
		members[m.ID] = struct{}{}
	}

	for _, l := range b.Lists {
		if l == nil {
			return Invalidf("null list entry")
		}
		if err := claim(KindList, l.ID); err != nil {
			return err
		}
		if strings.TrimSpace(l.Name) == "" {
			return Invalidf("list %q has an empty name", l.ID)
		}
		for _, c := range l.Cards {
			if err := validateCard(c, claim, members); err != nil {
				return err
			}
		}
	}

	for _, a := range b.Alerts {
		if a == nil {
			return Invalidf("null alert entry")
		}
		if err := claim("alert", a.ID); err != nil {
			return err
		}
	}
	return nil
}

func validateCard(c *Card, claim func(EntityKind, string) error, members map[string]struct{}) error {
	if c == nil {
		return Invalidf("null card entry")
	}
	if err := claim(KindCard, c.ID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Title) == "" {
		return Invalidf("card %q has an empty title", c.ID)
	}
	for _, id := range c.AssignedMembers {
		if _, ok := members[id]; !ok {
			return Invalidf("card %q is assigned to unknown member %q", c.ID, id)
		}
	}
	for _, s := range c.Subtasks {
		if s == nil {
			return Invalidf("null subtask entry on card %q", c.ID)
		}
		if err := claim(KindSubtask, s.ID); err != nil {
			return err
		}
		if strings.TrimSpace(s.Title) == "" {
			return Invalidf("subtask %q has an empty title", s.ID)
		}
	}
	for _, cm := range c.Comments {
		if cm == nil {
			return Invalidf("null comment entry on card %q", c.ID)
		}
	}
	for _, e := range c.ActivityLog {
		if e == nil {
			return Invalidf("null activity entry on card %q", c.ID)
		}
	}
	return nil
}

// Normalize replaces nil collections with empty ones and collapses the
// label and assignment sets. It is applied to imported documents after a
// successful Validate.
func (b *Board) Normalize() {
	if b.Lists == nil {
		b.Lists = []*List{}
	}
	if b.Members == nil {
		b.Members = []*Member{}
	}
	if b.Alerts == nil {
		b.Alerts = []*Alert{}
	}
	for _, l := range b.Lists {
		if l.Cards == nil {
			l.Cards = []*Card{}
		}
		for _, c := range l.Cards {
			c.Labels = UniqueStrings(c.Labels)
			c.AssignedMembers = UniqueStrings(c.AssignedMembers)
			if c.Attachments == nil {
				c.Attachments = []string{}
			}
			if c.Comments == nil {
				c.Comments = []*Comment{}
			}
			if c.ActivityLog == nil {
				c.ActivityLog = []*ActivityLogEntry{}
			}
			if c.Subtasks == nil {
				c.Subtasks = []*Subtask{}
			}
		}
	}
}
