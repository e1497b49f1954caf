package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/util"
)

// CacheKey is where the normalized catalog lives in the local store.
const CacheKey = "catalog"

// Cache is the slice of the local store the fetch chain needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

type FetchOptions struct {
	// Source is an http(s) URL or a file path.
	Source string
	Cache  Cache
	// Refresh skips the cached copy.
	Refresh bool
	Timeout time.Duration
	Logger  *zap.Logger
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func readSource(ctx context.Context, src string, timeout time.Duration) ([]byte, error) {
	if isURL(src) {
		return util.GetBytes(ctx, src, timeout)
	}
	return os.ReadFile(src)
}

// Fetch loads the catalog: cached copy first, then the source, which is
// written back to the cache on success. With Refresh the source is tried
// first and the cached copy only serves when the source fails.
func Fetch(ctx context.Context, opt FetchOptions) (*Index, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if !opt.Refresh {
		if idx := fromCache(ctx, opt.Cache, log); idx != nil {
			return idx, nil
		}
	}

	idx, err := fromSource(ctx, opt, log)
	if err != nil {
		if opt.Refresh && errors.Is(err, ErrNetwork) {
			if cached := fromCache(ctx, opt.Cache, log); cached != nil {
				log.Warn("catalog refresh failed, using cached copy", zap.Error(err))
				return cached, nil
			}
		}
		return nil, err
	}
	return idx, nil
}

// fromCache returns the cached catalog, or nil when there is none usable.
func fromCache(ctx context.Context, cache Cache, log *zap.Logger) *Index {
	if cache == nil {
		return nil
	}
	b, ok, err := cache.Get(ctx, CacheKey)
	if err != nil {
		log.Warn("catalog cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var records []Card
	if err := json.Unmarshal(b, &records); err != nil {
		log.Warn("cached catalog unreadable, refetching", zap.Error(err))
		return nil
	}
	idx, err := BuildIndex(records)
	if err != nil {
		log.Warn("cached catalog rejected, refetching", zap.Error(err))
		return nil
	}
	log.Debug("catalog loaded from cache", zap.Int("cards", idx.Len()))
	return idx
}

func fromSource(ctx context.Context, opt FetchOptions, log *zap.Logger) (*Index, error) {
	if opt.Source == "" {
		return nil, fmt.Errorf("%w: no catalog source configured", ErrNetwork)
	}
	raw, err := readSource(ctx, opt.Source, opt.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	records, err := ParseDocument(raw, FormatFromPath(opt.Source))
	if err != nil {
		return nil, err
	}
	idx, err := BuildIndex(records)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded", zap.String("source", opt.Source), zap.Int("cards", idx.Len()))

	if opt.Cache != nil {
		b, err := json.Marshal(idx.All())
		if err == nil {
			err = opt.Cache.Put(ctx, CacheKey, b)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return idx, nil
}
