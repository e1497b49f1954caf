package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/util"
)

// DefaultProgressEvery is how many items pass between progress reports.
const DefaultProgressEvery = 100

var ErrQueueFull = errors.New("asset queue is full")

// Progress reports a job. Done is set on the final report only.
type Progress struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Failed    int    `json:"failed"`
	Done      bool   `json:"-"`
}

type job struct {
	id     string
	urls   []string
	report func(Progress)
}

// Cacher keeps raw image bytes on disk. Jobs run one at a time, in the order
// they were enqueued, on the goroutine that calls Run.
type Cacher struct {
	dir           string
	progressEvery int
	timeout       time.Duration
	fetch         func(ctx context.Context, url string) ([]byte, error)
	queue         chan job
	log           *zap.Logger
}

type Options struct {
	ProgressEvery int
	QueueSize     int
	Timeout       time.Duration
	Logger        *zap.Logger
}

func New(dir string, opt Options) (*Cacher, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, err
	}
	if opt.ProgressEvery <= 0 {
		opt.ProgressEvery = DefaultProgressEvery
	}
	if opt.QueueSize <= 0 {
		opt.QueueSize = 8
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	c := &Cacher{
		dir:           dir,
		progressEvery: opt.ProgressEvery,
		timeout:       opt.Timeout,
		queue:         make(chan job, opt.QueueSize),
		log:           opt.Logger,
	}
	c.fetch = func(ctx context.Context, url string) ([]byte, error) {
		return util.GetBytes(ctx, url, c.timeout)
	}
	return c, nil
}

func (c *Cacher) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, name[:2], name)
}

// Cached returns the stored bytes of url.
func (c *Cacher) Cached(url string) ([]byte, bool) {
	b, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}
	return b, true
}

// Get serves url from the cache, fetching and storing it on a miss.
func (c *Cacher) Get(ctx context.Context, url string) ([]byte, error) {
	if b, ok := c.Cached(url); ok {
		return b, nil
	}
	b, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := util.WriteFileAtomic(c.path(url), b); err != nil {
		c.log.Warn("failed to cache asset", zap.String("url", url), zap.Error(err))
	}
	return b, nil
}

// Enqueue schedules urls for caching and returns the job id. report
// receives a Progress every ProgressEvery items and once more at the end.
func (c *Cacher) Enqueue(urls []string, report func(Progress)) (string, error) {
	if report == nil {
		report = func(Progress) {}
	}
	j := job{id: uuid.NewString(), urls: append([]string(nil), urls...), report: report}
	select {
	case c.queue <- j:
		c.log.Info("asset job queued", zap.String("job", j.id), zap.Int("urls", len(urls)))
		return j.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Run processes queued jobs until ctx is done.
func (c *Cacher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-c.queue:
			c.process(ctx, j)
		}
	}
}

func (c *Cacher) process(ctx context.Context, j job) {
	p := Progress{Job: j.id, Total: len(j.urls)}
	for _, url := range j.urls {
		if ctx.Err() != nil {
			break
		}
		if _, ok := c.Cached(url); !ok {
			if _, err := c.Get(ctx, url); err != nil {
				p.Failed++
				c.log.Warn("asset fetch failed", zap.String("job", j.id), zap.String("url", url), zap.Error(err))
			}
		}
		p.Processed++
		if p.Processed%c.progressEvery == 0 && p.Processed < p.Total {
			j.report(p)
		}
	}
	p.Done = true
	j.report(p)
	c.log.Info("asset job finished", zap.String("job", j.id),
		zap.Int("processed", p.Processed), zap.Int("total", p.Total), zap.Int("failed", p.Failed))
}
