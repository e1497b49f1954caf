package deck

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/youruser/deckbuilder/internal/cards"
)

const (
	MaxMain   = 50
	MaxCopies = 4
	MaxDon    = 10
)

// Catalog resolves card ids. *cards.Index implements it.
type Catalog interface {
	ByID(id string) (cards.Card, bool)
}

type Outcome int

const (
	Added Outcome = iota
	RejectedLeaderPresent
	RejectedResourceFull
	RejectedMainFull
	RejectedCopyLimit
	RejectedUnsupportedCategory
)

var outcomeNames = [...]string{
	Added:                       "added",
	RejectedLeaderPresent:       "leader_present",
	RejectedResourceFull:        "resource_full",
	RejectedMainFull:            "main_full",
	RejectedCopyLimit:           "copy_limit",
	RejectedUnsupportedCategory: "unsupported_category",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Message is the short text shown to the user for o.
func (o Outcome) Message() string {
	switch o {
	case Added:
		return "Card added."
	case RejectedLeaderPresent:
		return "A leader is already selected."
	case RejectedResourceFull:
		return fmt.Sprintf("DON!! deck is full (%d cards).", MaxDon)
	case RejectedMainFull:
		return fmt.Sprintf("Main deck is full (%d cards).", MaxMain)
	case RejectedCopyLimit:
		return fmt.Sprintf("No more than %d copies of a card.", MaxCopies)
	case RejectedUnsupportedCategory:
		return "This card cannot be added to a deck."
	}
	return o.String()
}

// Deck is a deck under construction. Change it only through its methods.
type Deck struct {
	leader string
	main   map[string]int
	don    int
}

func New() *Deck {
	return &Deck{main: map[string]int{}}
}

func (d *Deck) Leader() string { return d.leader }
func (d *Deck) Don() int       { return d.don }
func (d *Deck) Count(id string) int {
	return d.main[id]
}

func (d *Deck) MainCount() int {
	n := 0
	for _, c := range d.main {
		n += c
	}
	return n
}

func (d *Deck) Empty() bool {
	return d.leader == "" && len(d.main) == 0 && d.don == 0
}

func (d *Deck) Clone() *Deck {
	out := &Deck{leader: d.leader, don: d.don, main: make(map[string]int, len(d.main))}
	for id, n := range d.main {
		out.main[id] = n
	}
	return out
}

// Clear empties the deck in place.
func (d *Deck) Clear() {
	d.leader = ""
	d.main = map[string]int{}
	d.don = 0
}

// Add applies the deck-building rules to card. A rejected card leaves the
// deck unchanged.
func (d *Deck) Add(card cards.Card) Outcome {
	switch {
	case card.Category == cards.Leader:
		if d.leader != "" {
			return RejectedLeaderPresent
		}
		d.leader = card.CardID
	case card.Category == cards.Resource:
		if d.don >= MaxDon {
			return RejectedResourceFull
		}
		d.don++
	case card.Category.IsMain():
		if d.MainCount() >= MaxMain {
			return RejectedMainFull
		}
		if d.main[card.CardID] >= MaxCopies {
			return RejectedCopyLimit
		}
		if d.main == nil {
			d.main = map[string]int{}
		}
		d.main[card.CardID]++
	default:
		return RejectedUnsupportedCategory
	}
	return Added
}

// Remove takes one card of the given category out of the deck. Removing
// something the deck does not hold does nothing.
func (d *Deck) Remove(id string, category cards.Category) {
	switch {
	case category == cards.Leader:
		if d.leader == id {
			d.leader = ""
		}
	case category == cards.Resource:
		if d.don > 0 {
			d.don--
		}
	case category.IsMain():
		n, ok := d.main[id]
		if !ok {
			return
		}
		if n <= 1 {
			delete(d.main, id)
			return
		}
		d.main[id] = n - 1
	}
}

type Entry struct {
	CardID string `json:"id"`
	Count  int    `json:"count"`
}

// Entries returns the main deck in display order: cost ascending with
// costless cards last, then name in the collation of tag, then id.
// Ids missing from cat sort after everything else.
func (d *Deck) Entries(cat Catalog, tag language.Tag) []Entry {
	type row struct {
		Entry
		card  cards.Card
		known bool
	}
	rows := make([]row, 0, len(d.main))
	for id, n := range d.main {
		c, ok := cat.ByID(id)
		rows = append(rows, row{Entry: Entry{CardID: id, Count: n}, card: c, known: ok})
	}
	col := collate.New(tag)
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.known != b.known {
			return a.known
		}
		if ca, cb := sortCost(a.card), sortCost(b.card); ca != cb {
			return ca < cb
		}
		if c := col.CompareString(a.card.Name, b.card.Name); c != 0 {
			return c < 0
		}
		return a.CardID < b.CardID
	})
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = r.Entry
	}
	return out
}

func sortCost(c cards.Card) int {
	if c.Cost == nil {
		return int(^uint(0) >> 1)
	}
	return *c.Cost
}

// Validate lists the deck-building rules the deck currently breaks. Decks
// built with Add only ever miss their leader; decoded decks may be oversized.
func (d *Deck) Validate() []string {
	var problems []string
	if d.leader == "" {
		problems = append(problems, "no leader selected")
	}
	if n := d.MainCount(); n > MaxMain {
		problems = append(problems, fmt.Sprintf("main deck has %d cards, max is %d", n, MaxMain))
	}
	if d.don > MaxDon {
		problems = append(problems, fmt.Sprintf("DON!! deck has %d cards, max is %d", d.don, MaxDon))
	}
	return problems
}
