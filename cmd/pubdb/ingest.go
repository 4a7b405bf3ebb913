// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubdb/internal/httpcache"
	"github.com/pdiddy/pubdb/internal/ingest"
	"github.com/pdiddy/pubdb/internal/ingest/biomed"
	"github.com/pdiddy/pubdb/internal/ingest/openarchive"
	"github.com/pdiddy/pubdb/internal/sqlmirror"
	"github.com/pdiddy/pubdb/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [author]",
	Short: "Fetch bibliographic records for an author and merge them into the mirror",
	Long: `Ingest queries every configured source (openarchive, biomed) concurrently
for the given author name, deduplicates the results against each other and
against whatever is already stored, and persists the merged set to the
SQL mirror.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	author := args[0]

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)

	adapters, closeCaches, err := buildAdapters(cfg)
	if err != nil {
		return err
	}
	defer closeCaches()

	mirror, err := sqlmirror.Open(cfg.SQLMirror.Path)
	if err != nil {
		return fmt.Errorf("opening mirror: %w", err)
	}
	defer mirror.Close()

	db, err := mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading mirror: %w", err)
	}

	before := len(db.All())
	for rec := range ingest.Run(ctx, adapters, author, os.Stderr) {
		db.Add(rec.Pub)
	}
	after := len(db.All())

	if err := mirror.Save(ctx, db); err != nil {
		return fmt.Errorf("saving mirror: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %q: %d publication(s) total (%d new)\n", author, after, after-before)
	return nil
}

// buildAdapters constructs the ingest.Adapter set and their shared HTTP
// caches from cfg, returning a cleanup func that closes every cache
// opened along the way.
func buildAdapters(cfg types.PipelineConfig) ([]ingest.Adapter, func(), error) {
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var cache *httpcache.Cache
	if cfg.HTTPCache.Dir != "" {
		c, err := httpcache.Open(httpcache.Options{
			Dir:       cfg.HTTPCache.Dir,
			Freshness: cfg.HTTPCache.Freshness,
			UserAgent: cfg.HTTPCache.UserAgent,
			Client:    &http.Client{Timeout: cfg.HTTPCache.Timeout},
		})
		if err != nil {
			return nil, closeAll, fmt.Errorf("opening HTTP cache: %w", err)
		}
		closers = append(closers, c.Close)
		cache = c
	}

	openarchiveClient := &http.Client{Timeout: cfg.OpenArchive.Timeout}
	biomedClient := &http.Client{Timeout: cfg.Biomed.Timeout}

	adapters := []ingest.Adapter{
		&openarchive.Backend{
			Client:  openarchiveClient,
			Cache:   cache,
			Rows:    cfg.OpenArchive.Rows,
			BaseURL: cfg.OpenArchive.BaseURL,
		},
		&biomed.Backend{
			Client:         biomedClient,
			Cache:          cache,
			EsearchBaseURL: cfg.Biomed.EsearchBaseURL,
			EfetchBaseURL:  cfg.Biomed.EfetchBaseURL,
			MaxResultCount: cfg.Biomed.MaxResultCount,
		},
	}
	return adapters, closeAll, nil
}
