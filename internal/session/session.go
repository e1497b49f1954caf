package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

// Persister saves and restores the current deck. *store.DeckStore
// implements it.
type Persister interface {
	Save(ctx context.Context, d *deck.Deck) error
	Load(ctx context.Context, cat deck.Catalog) (*deck.Deck, error)
}

// Session owns the catalog, the deck being built and the active filter.
// All methods are safe for concurrent use; mutations are serialized.
type Session struct {
	// pubMu is held from a mutation until its events are published, so
	// subscribers see changes in the order they were applied.
	pubMu sync.Mutex

	mu      sync.Mutex
	version uint64
	idx     *cards.Index
	codec   deck.Codec
	deck    *deck.Deck
	query   cards.FilterQuery
	persist Persister
	log     *zap.Logger

	subMu  sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

type Options struct {
	Locale    language.Tag
	Persister Persister
	Logger    *zap.Logger
}

func New(idx *cards.Index, opt Options) *Session {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Locale == language.Und {
		opt.Locale = deck.DefaultLocale
	}
	return &Session{
		idx:     idx,
		codec:   deck.Codec{Catalog: idx, Locale: opt.Locale},
		deck:    deck.New(),
		persist: opt.Persister,
		log:     opt.Logger,
		subs:    map[int]func(Event){},
	}
}

func (s *Session) Catalog() *cards.Index { return s.idx }

// Restore replaces the current deck with the persisted one.
func (s *Session) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	d, err := s.persist.Load(ctx, s.idx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.deck = d
	s.version++
	v := s.viewLocked()
	s.mu.Unlock()
	s.log.Info("deck restored", zap.Int("main", v.MainCount), zap.Int("don", v.Don))
	s.publish(Event{Type: EventDeck, Deck: &v})
	return nil
}

// ApplyFilter remembers q and returns the matching cards.
func (s *Session) ApplyFilter(q cards.FilterQuery) []cards.Card {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	out := cards.Filter(s.idx.All(), q)
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.publish(Event{Type: EventFilter, Filter: &FilterResult{Query: q, Count: len(out)}})
	return out
}

func (s *Session) Query() cards.FilterQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// AddCard adds one copy of id. A rule rejection is reported through the
// outcome, not an error; the error is cards.ErrNotFound for unknown ids.
func (s *Session) AddCard(ctx context.Context, id string) (deck.Outcome, View, error) {
	c, err := s.idx.Get(id)
	if err != nil {
		return 0, View{}, err
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	outcome := s.deck.Add(c)
	if outcome == deck.Added {
		s.version++
		s.saveLocked(ctx)
	}
	v := s.viewLocked()
	s.mu.Unlock()

	if outcome != deck.Added {
		s.log.Debug("card rejected", zap.String("card_id", id), zap.Stringer("outcome", outcome))
		s.message(outcome.Message(), LevelWarn)
		return outcome, v, nil
	}
	s.publish(Event{Type: EventDeck, Deck: &v})
	return outcome, v, nil
}

// RemoveCard takes one copy of id out of the deck.
func (s *Session) RemoveCard(ctx context.Context, id string) (View, error) {
	c, err := s.idx.Get(id)
	if err != nil {
		return View{}, err
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	s.deck.Remove(c.CardID, c.Category)
	s.version++
	s.saveLocked(ctx)
	v := s.viewLocked()
	s.mu.Unlock()
	s.publish(Event{Type: EventDeck, Deck: &v})
	return v, nil
}

func (s *Session) Clear(ctx context.Context) View {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	s.deck = deck.New()
	s.version++
	s.saveLocked(ctx)
	v := s.viewLocked()
	s.mu.Unlock()
	s.publish(Event{Type: EventDeck, Deck: &v})
	return v
}

// Encode returns the share code of the current deck.
func (s *Session) Encode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.Encode(s.deck)
}

// LoadCode replaces the deck with the one in code. On error the current
// deck is kept.
func (s *Session) LoadCode(ctx context.Context, code string) (View, []deck.Skip, error) {
	d, skipped, err := s.codec.Decode(code)
	if err != nil {
		s.log.Info("deck code rejected", zap.Error(err))
		return View{}, nil, err
	}
	for _, sk := range skipped {
		s.log.Warn("deck code entry skipped", zap.String("entry", sk.Entry), zap.String("reason", sk.Reason))
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	s.deck = d
	s.version++
	s.saveLocked(ctx)
	v := s.viewLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventDeck, Deck: &v})
	if len(skipped) > 0 {
		s.message(skippedMessage(len(skipped)), LevelWarn)
	}
	return v, skipped, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := buildView(s.deck, s.idx, s.codec.Locale)
	v.Version = s.version
	return v
}

// saveLocked persists the current deck. A failed save is logged and does
// not undo the change.
func (s *Session) saveLocked(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.deck); err != nil {
		s.log.Error("failed to save deck", zap.Error(err))
	}
}
