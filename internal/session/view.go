package session

import (
	"golang.org/x/text/language"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

type EntryView struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
}

// View is a render-ready snapshot of a deck. Version grows with every
// change to the session's deck.
type View struct {
	Version    uint64      `json:"version"`
	Leader     *cards.Card `json:"leader"`
	Main       []EntryView `json:"main"`
	MainCount  int         `json:"main_count"`
	Don        int         `json:"don"`
	Exportable bool        `json:"exportable"`
	Problems   []string    `json:"problems,omitempty"`
}

func buildView(d *deck.Deck, idx *cards.Index, tag language.Tag) View {
	v := View{
		Main:      []EntryView{},
		MainCount: d.MainCount(),
		Don:       d.Don(),
		Problems:  d.Validate(),
	}
	if id := d.Leader(); id != "" {
		if c, ok := idx.ByID(id); ok {
			v.Leader = &c
		}
	}
	for _, e := range d.Entries(idx, tag) {
		c, ok := idx.ByID(e.CardID)
		if !ok {
			c = cards.Card{CardID: e.CardID}
		}
		v.Main = append(v.Main, EntryView{Card: c, Count: e.Count})
	}
	v.Exportable = d.Leader() != ""
	return v
}
