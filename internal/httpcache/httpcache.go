// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpcache implements the external HTTP cache collaborator: a
// SQLite-backed, URL-keyed store of gzip-compressed response bodies
// with a configurable freshness window, falling back to a
// bounded-retry HTTP GET on a miss or a stale entry.
package httpcache

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubdb/internal/httputil"
)

// ErrCacheCorruption is returned internally when a stored body fails to
// gunzip; Get never surfaces it — the row is dropped and the URL is
// refetched once.
var ErrCacheCorruption = errors.New("httpcache: cache entry corrupt")

const dbFile = "httpcache.db"

// DefaultFreshness is the default window: entries younger than this
// are served from the cache without a network round trip.
const DefaultFreshness = 30 * 24 * time.Hour

// Cache wraps a SQLite database holding one row per cached URL.
type Cache struct {
	db        *sql.DB
	client    *http.Client
	freshness time.Duration
	userAgent string
}

// Options configures a Cache.
type Options struct {
	// Dir is the directory the cache database lives in; created if
	// absent. Required.
	Dir string
	// Freshness overrides DefaultFreshness; zero keeps the default.
	Freshness time.Duration
	// Client overrides http.DefaultClient for cache-miss fetches.
	Client *http.Client
	// UserAgent is sent on every fetch.
	UserAgent string
}

// Open opens or creates the cache database at opts.Dir/httpcache.db,
// creating its schema if absent via an idempotent
// CREATE-TABLE-IF-NOT-EXISTS-plus-WAL pattern.
func Open(opts Options) (*Cache, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(opts.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS http_cache (
		url TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetch_time TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	freshness := opts.Freshness
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &Cache{db: db, client: client, freshness: freshness, userAgent: opts.UserAgent}, nil
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the body for url: a fresh cached copy if one exists,
// otherwise the result of a live HTTP GET (retried per
// internal/httputil.DoWithRetry), which is then stored compressed for
// next time. now is the comparison point for freshness; callers pass
// the current time.
func (c *Cache) Get(ctx context.Context, url string, now time.Time) ([]byte, error) {
	body, fresh, err := c.lookup(ctx, url, now)
	if err != nil && !errors.Is(err, ErrCacheCorruption) {
		return nil, err
	}
	if err == nil && fresh {
		return body, nil
	}
	if errors.Is(err, ErrCacheCorruption) {
		if _, delErr := c.db.ExecContext(ctx, `DELETE FROM http_cache WHERE url = ?`, url); delErr != nil {
			return nil, fmt.Errorf("dropping corrupt cache entry: %w", delErr)
		}
	}

	fetched, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, url, fetched, now); err != nil {
		return nil, fmt.Errorf("storing cache entry: %w", err)
	}
	return fetched, nil
}

// lookup returns the decompressed body for url and whether it is still
// within the freshness window. A gunzip failure is reported as
// ErrCacheCorruption rather than as a plain error.
func (c *Cache) lookup(ctx context.Context, url string, now time.Time) ([]byte, bool, error) {
	var compressed []byte
	var fetchTime time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetch_time FROM http_cache WHERE url = ?`, url,
	).Scan(&compressed, &fetchTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	body, err := gunzip(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheCorruption, err)
	}

	return body, now.Sub(fetchTime) < c.freshness, nil
}

func (c *Cache) store(ctx context.Context, url string, body []byte, fetchTime time.Time) error {
	compressed, err := gzipBytes(body)
	if err != nil {
		return fmt.Errorf("compressing body: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO http_cache (url, body, fetch_time) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetch_time = excluded.fetch_time`,
		url, compressed, fetchTime,
	)
	return err
}

// fetch performs the live GET, advertising gzip acceptance and
// retrying through internal/httputil on 429 or transport error.
func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func gzipBytes(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
