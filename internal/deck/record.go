package deck

import (
	"sort"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Record is the persisted form of a deck.
type Record struct {
	Leader *string `json:"leader"`
	Main   []Entry `json:"main"`
	Don    int     `json:"don"`
}

// Record snapshots d with main entries ordered by id.
func (d *Deck) Record() Record {
	r := Record{Main: make([]Entry, 0, len(d.main)), Don: d.don}
	if d.leader != "" {
		id := d.leader
		r.Leader = &id
	}
	for id, n := range d.main {
		r.Main = append(r.Main, Entry{CardID: id, Count: n})
	}
	sort.Slice(r.Main, func(i, j int) bool { return r.Main[i].CardID < r.Main[j].CardID })
	return r
}

// FromRecord rebuilds a deck against cat. Entries that no longer resolve to
// a card of the right category, or have no positive count, are skipped.
func FromRecord(r Record, cat Catalog) (*Deck, []Skip) {
	d := New()
	var skipped []Skip
	if r.Leader != nil && *r.Leader != "" {
		if c, ok := cat.ByID(*r.Leader); ok && c.Category == cards.Leader {
			d.leader = c.CardID
		} else {
			skipped = append(skipped, Skip{Entry: *r.Leader, Reason: "unknown leader"})
		}
	}
	for _, e := range r.Main {
		c, ok := cat.ByID(e.CardID)
		switch {
		case !ok:
			skipped = append(skipped, Skip{Entry: e.CardID, Reason: "unknown card"})
		case !c.Category.IsMain():
			skipped = append(skipped, Skip{Entry: e.CardID, Reason: "not a main deck card"})
		case e.Count <= 0:
			skipped = append(skipped, Skip{Entry: e.CardID, Reason: "count must be positive"})
		default:
			n := d.main[c.CardID] + e.Count
			if n > MaxCopies {
				n = MaxCopies
			}
			d.main[c.CardID] = n
		}
	}
	if r.Don > 0 {
		d.don = r.Don
	}
	return d, skipped
}
