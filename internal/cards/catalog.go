package cards

import (
	"fmt"
	"strings"
)

// Index is the read-only catalog of a session. Build it once with BuildIndex.
type Index struct {
	cards []Card
	byID  map[string]int
}

// BuildIndex indexes records by card id. A repeated id rejects the whole
// catalog.
func BuildIndex(records []Card) (*Index, error) {
	idx := &Index{
		cards: make([]Card, 0, len(records)),
		byID:  make(map[string]int, len(records)),
	}
	for i, c := range records {
		id := strings.TrimSpace(c.CardID)
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has no card id", ErrInvalidCatalog, i)
		}
		if _, ok := idx.byID[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, id)
		}
		c.CardID = id
		idx.byID[id] = len(idx.cards)
		idx.cards = append(idx.cards, c)
	}
	return idx, nil
}

func (x *Index) ByID(id string) (Card, bool) {
	i, ok := x.byID[id]
	if !ok {
		return Card{}, false
	}
	return x.cards[i], true
}

// Get is ByID with an ErrNotFound error for lookups that must succeed.
func (x *Index) Get(id string) (Card, error) {
	c, ok := x.ByID(id)
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// All returns the catalog in document order. The slice is a copy.
func (x *Index) All() []Card {
	out := make([]Card, len(x.cards))
	copy(out, x.cards)
	return out
}

func (x *Index) Len() int { return len(x.cards) }
