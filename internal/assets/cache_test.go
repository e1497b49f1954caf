package assets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func imageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCacher_Get(t *testing.T) {
	var hits int32
	srv := imageServer(t, &hits)
	c, err := New(t.TempDir(), Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	ctx := context.Background()

	b, err := c.Get(ctx, srv.URL+"/OP01-001.png")
	require.NoError(t, err)
	assert.Equal(t, "png:/OP01-001.png", string(b))

	b, err = c.Get(ctx, srv.URL+"/OP01-001.png")
	require.NoError(t, err)
	assert.Equal(t, "png:/OP01-001.png", string(b))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = c.Get(ctx, srv.URL+"/missing.png")
	assert.Error(t, err)
	_, ok := c.Cached(srv.URL + "/missing.png")
	assert.False(t, ok)
}

func TestCacher_JobReportsProgress(t *testing.T) {
	var hits int32
	srv := imageServer(t, &hits)
	c, err := New(t.TempDir(), Options{ProgressEvery: 100, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	var urls []string
	for i := 0; i < 250; i++ {
		urls = append(urls, fmt.Sprintf("%s/card-%03d.png", srv.URL, i))
	}
	urls[10] = srv.URL + "/missing-1.png"
	urls[20] = srv.URL + "/missing-2.png"

	reports := make(chan Progress, 10)
	id, err := c.Enqueue(urls, func(p Progress) { reports <- p })
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got []Progress
	timeout := time.After(10 * time.Second)
	for done := false; !done; {
		select {
		case p := <-reports:
			got = append(got, p)
			done = p.Done
		case <-timeout:
			t.Fatalf("job did not finish, got %+v", got)
		}
	}

	require.Len(t, got, 3)
	assert.Equal(t, 100, got[0].Processed)
	assert.Equal(t, 200, got[1].Processed)
	assert.Equal(t, Progress{Job: id, Processed: 250, Total: 250, Failed: 2, Done: true}, got[2])
	for _, p := range got {
		assert.Equal(t, id, p.Job)
	}

	// a second job over the same urls only refetches the failures
	before := atomic.LoadInt32(&hits)
	_, err = c.Enqueue(urls, func(p Progress) { reports <- p })
	require.NoError(t, err)
	for done := false; !done; {
		select {
		case p := <-reports:
			done = p.Done
		case <-time.After(10 * time.Second):
			t.Fatal("second job did not finish")
		}
	}
	assert.Equal(t, before+2, atomic.LoadInt32(&hits))
}

func TestCacher_QueueFull(t *testing.T) {
	c, err := New(t.TempDir(), Options{QueueSize: 1})
	require.NoError(t, err)
	_, err = c.Enqueue([]string{"http://example.invalid/a.png"}, nil)
	require.NoError(t, err)
	_, err = c.Enqueue([]string{"http://example.invalid/b.png"}, nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}
