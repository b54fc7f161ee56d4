package models

// List is a board column. Its position in Board.Lists is the left-to-right
// column order.
type List struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Cards []*Card `json:"cards"`
}

// FindCard locates a card by id
func (l *List) FindCard(cardID string) (*Card, int, error) {
	for i, c := range l.Cards {
		if c.ID == cardID {
			return c, i, nil
		}
	}
	return nil, -1, NotFound(KindCard, cardID)
}
