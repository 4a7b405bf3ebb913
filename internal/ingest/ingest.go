// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest defines the adapter contract every bibliographic source
// implements, and a fan-in runner that funnels several adapters'
// output into a single stream for PubDB.Add to consume.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/httpcache"
	"github.com/pdiddy/pubdb/internal/httputil"
)

// Record is one adapter-produced item: either a Publication ready for
// PubDB.Add, or an error describing why one record was dropped. A
// malformed individual record never aborts the stream — only Err is
// set and the adapter moves on to the next record.
type Record struct {
	Pub *biblio.Publication
	Err error
}

// Adapter is implemented by each bibliographic source. Fetch runs the
// query and streams results on the returned channel, closing it when
// done or when ctx is cancelled.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query string) <-chan Record
}

// Run fans a query out to every adapter concurrently — one goroutine per
// adapter — and funnels their output into a single channel. Unlike
// collecting into a slice first, Run streams results directly, since an
// ingestion query can yield far more records than a single result page.
// PubDB.Add must only ever be called from the single goroutine draining
// the returned channel, preserving pubdb.DB's single-threaded,
// non-reentrant contract.
func Run(ctx context.Context, adapters []Adapter, query string, w io.Writer) <-chan Record {
	merged := make(chan Record)
	var wg sync.WaitGroup

	for _, a := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			for rec := range a.Fetch(ctx, query) {
				if rec.Err != nil {
					fmt.Fprintf(w, "warning: adapter %s: %v\n", a.Name(), rec.Err)
					continue
				}
				select {
				case merged <- rec:
				case <-ctx.Done():
					return
				}
			}
		}(a)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}

// FetchBody retrieves url's body, going through cache when one is
// configured (so repeated ingestion runs against the same author don't
// re-fetch an unchanged record) and falling back to a direct retried GET
// when cache is nil.
func FetchBody(ctx context.Context, client *http.Client, cache *httpcache.Cache, url string) ([]byte, error) {
	if cache != nil {
		return cache.Get(ctx, url, time.Now())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
