package session

import (
	"fmt"

	"github.com/youruser/deckbuilder/internal/cards"
)

type EventType string

const (
	EventDeck    EventType = "deck"
	EventFilter  EventType = "filter"
	EventMessage EventType = "message"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type FilterResult struct {
	Query cards.FilterQuery `json:"query"`
	Count int               `json:"count"`
}

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Event is a state-change notification. Exactly one payload is set.
type Event struct {
	Type    EventType     `json:"type"`
	Deck    *View         `json:"deck,omitempty"`
	Filter  *FilterResult `json:"filter,omitempty"`
	Message *Message      `json:"message,omitempty"`
}

// Subscribe registers fn for every event and returns a function that
// removes it. fn runs synchronously on the goroutine that caused the event,
// in the order changes were applied; it must not call back into methods
// that change the session.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) publish(e Event) {
	s.subMu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}

func (s *Session) message(text string, level Level) {
	s.publish(Event{Type: EventMessage, Message: &Message{Level: level, Text: text}})
}

func skippedMessage(n int) string {
	if n == 1 {
		return "1 entry in the deck code was skipped."
	}
	return fmt.Sprintf("%d entries in the deck code were skipped.", n)
}
