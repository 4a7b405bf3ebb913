// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/sqlmirror"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge a YAML export back into the mirror",
	Long: `Import reads a file written by export, reconstructs each publication,
and merges it into the SQL mirror the same way a live ingest run would —
records that match an existing publication are merged into it rather than
duplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func fromExportedRef(r exportedRef) biblio.RefValue {
	switch {
	case r.Pages != "" && (r.ISBN != "" || r.Reftype == "book"):
		return biblio.NewRefBook(r.Value, r.ISBN, r.Pages)
	case r.Pages != "" && (r.ISSN != "" || r.Volume != "" || r.Issue != ""):
		return biblio.NewRefJournal(r.Value, r.ISSN, r.Issue, r.Volume, r.Pages)
	default:
		return biblio.NewRef(r.Reftype, r.Value)
	}
}

func fromExportedPublication(e exportedPublication) *biblio.Publication {
	refs := make([]biblio.RefValue, 0, len(e.Refs))
	for _, r := range e.Refs {
		refs = append(refs, fromExportedRef(r))
	}

	authors := make([]*biblio.Author, 0, len(e.Authors))
	for _, a := range e.Authors {
		parts := strings.SplitN(a, "|", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		authors = append(authors, biblio.NewAuthor(parts[0], parts[1], parts[2]))
	}

	return biblio.NewPublication(biblio.NormalizePubtype(e.Pubtype), e.Date, refs, authors, e.ENAbstract, e.FRAbstract)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var exported []exportedPublication
	if err := yaml.Unmarshal(data, &exported); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	mirror, err := sqlmirror.Open(cfg.SQLMirror.Path)
	if err != nil {
		return fmt.Errorf("opening mirror: %w", err)
	}
	defer mirror.Close()

	db, err := mirror.Load(cmdContext(cmd))
	if err != nil {
		return fmt.Errorf("loading mirror: %w", err)
	}

	before := len(db.All())
	for _, e := range exported {
		db.Add(fromExportedPublication(e))
	}
	after := len(db.All())

	if err := mirror.Save(cmdContext(cmd), db); err != nil {
		return fmt.Errorf("saving mirror: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d record(s) from %s: %d publication(s) total (%d new)\n",
		len(exported), args[0], after, after-before)
	return nil
}
