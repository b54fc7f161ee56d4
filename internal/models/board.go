package models

import "time"

// Board is the top-level shared document. It owns its lists, members and
// alerts; every descendant is addressed by id, never by pointer, outside of
// a single handler invocation.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Lists     []*List   `json:"lists"`
	Members   []*Member `json:"members"`
	Alerts    []*Alert  `json:"alerts"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoardSummary is the lightweight listing form of a board
type BoardSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Lists     int       `json:"lists"`
	Cards     int       `json:"cards"`
	Members   int       `json:"members"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBoard returns an empty board with every collection initialised
func NewBoard(id, name string, now time.Time) *Board {
	return &Board{
		ID:        id,
		Name:      name,
		Lists:     []*List{},
		Members:   []*Member{},
		Alerts:    []*Alert{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Summary condenses the board for listings
func (b *Board) Summary() BoardSummary {
	cards := 0
	for _, l := range b.Lists {
		cards += len(l.Cards)
	}
	return BoardSummary{
		ID:        b.ID,
		Name:      b.Name,
		Lists:     len(b.Lists),
		Cards:     cards,
		Members:   len(b.Members),
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	}
}

// FindList locates a list by id
func (b *Board) FindList(listID string) (*List, int, error) {
	for i, l := range b.Lists {
		if l.ID == listID {
			return l, i, nil
		}
	}
	return nil, -1, NotFound(KindList, listID)
}

// FindCard locates a card by id within the given list
func (b *Board) FindCard(listID, cardID string) (*List, *Card, int, error) {
	list, _, err := b.FindList(listID)
	if err != nil {
		return nil, nil, -1, err
	}
	card, idx, err := list.FindCard(cardID)
	if err != nil {
		return nil, nil, -1, err
	}
	return list, card, idx, nil
}

// FindMember locates a member by id
func (b *Board) FindMember(memberID string) (*Member, int, error) {
	for i, m := range b.Members {
		if m.ID == memberID {
			return m, i, nil
		}
	}
	return nil, -1, NotFound(KindMember, memberID)
}

// HasMember reports whether memberID belongs to the board
func (b *Board) HasMember(memberID string) bool {
	_, _, err := b.FindMember(memberID)
	return err == nil
}

// AssignedMembers resolves a card's weak member references. Ids that no
// longer name a member of the board are treated as unassigned.
func (b *Board) AssignedMembers(card *Card) []*Member {
	out := make([]*Member, 0, len(card.AssignedMembers))
	for _, id := range card.AssignedMembers {
		if m, _, err := b.FindMember(id); err == nil {
			out = append(out, m)
		}
	}
	return out
}
