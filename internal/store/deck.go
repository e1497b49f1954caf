package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/deck"
)

// DeckKey is the key of the current deck record.
const DeckKey = "deck"

// DeckStore persists the current deck as a deck.Record.
type DeckStore struct {
	bucket Bucket
	log    *zap.Logger
}

func NewDeckStore(s *Store) *DeckStore {
	return &DeckStore{bucket: s.Bucket(Namespace), log: s.log}
}

func (ds *DeckStore) Save(ctx context.Context, d *deck.Deck) error {
	b, err := json.Marshal(d.Record())
	if err != nil {
		return err
	}
	return ds.bucket.Put(ctx, DeckKey, b)
}

// Load restores the saved deck, or an empty deck when nothing is saved. A
// record that does not decode is deleted and an empty deck returned.
func (ds *DeckStore) Load(ctx context.Context, cat deck.Catalog) (*deck.Deck, error) {
	b, ok, err := ds.bucket.Get(ctx, DeckKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return deck.New(), nil
	}
	var rec deck.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		ds.log.Warn("discarding saved deck",
			zap.Error(fmt.Errorf("%w: %v", ErrStorageCorrupt, err)))
		if err := ds.bucket.Delete(ctx, DeckKey); err != nil {
			return nil, err
		}
		return deck.New(), nil
	}
	d, skipped := deck.FromRecord(rec, cat)
	for _, s := range skipped {
		ds.log.Warn("saved deck entry dropped", zap.String("entry", s.Entry), zap.String("reason", s.Reason))
	}
	return d, nil
}

// Clear forgets the saved deck.
func (ds *DeckStore) Clear(ctx context.Context) error {
	return ds.bucket.Delete(ctx, DeckKey)
}
