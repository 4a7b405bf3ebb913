// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubdb/internal/httputil"
)

func openTestCache(t *testing.T, freshness time.Duration) *Cache {
	t.Helper()
	c, err := Open(Options{Dir: t.TempDir(), Freshness: freshness})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGet_FetchesAndCachesOnMiss(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("hello world"))
	}))
	defer server.Close()

	c := openTestCache(t, time.Hour)
	ctx := context.Background()
	now := time.Now()

	body, err := c.Get(ctx, server.URL, now)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, 1, hits)

	body, err = c.Get(ctx, server.URL, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, 1, hits, "second Get within the freshness window must not re-fetch")
}

func TestGet_RefetchesWhenStale(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("fresh content"))
	}))
	defer server.Close()

	c := openTestCache(t, time.Minute)
	ctx := context.Background()
	now := time.Now()

	_, err := c.Get(ctx, server.URL, now)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	_, err = c.Get(ctx, server.URL, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "a stale entry must trigger a refetch")
}

func TestGet_RefetchesOnCorruptEntry(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	c := openTestCache(t, time.Hour)
	ctx := context.Background()
	now := time.Now()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO http_cache (url, body, fetch_time) VALUES (?, ?, ?)`,
		server.URL, []byte("not actually gzip"), now,
	)
	require.NoError(t, err)

	body, err := c.Get(ctx, server.URL, now)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, 1, hits)

	var count int
	require.NoError(t, c.db.QueryRowContext(ctx, `SELECT count(*) FROM http_cache WHERE url = ?`, server.URL).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGet_PropagatesTransportFailure(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	c := openTestCache(t, time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx, "http://127.0.0.1:0/unreachable", time.Now())
	assert.Error(t, err)

	var count int
	require.NoError(t, c.db.QueryRowContext(ctx, `SELECT count(*) FROM http_cache`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestLookup_ReturnsNoRowsWithoutError(t *testing.T) {
	c := openTestCache(t, time.Hour)
	_, fresh, err := c.lookup(context.Background(), "https://example.com/absent", time.Now())
	require.NoError(t, err)
	assert.False(t, fresh)
}
