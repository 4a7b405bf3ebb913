// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/sqlmirror"
)

// exportedRef is the flattened, YAML-friendly shape of one biblio.RefValue.
type exportedRef struct {
	Reftype string `yaml:"reftype"`
	Value   string `yaml:"value"`
	Pages   string `yaml:"pages,omitempty"`
	ISSN    string `yaml:"issn,omitempty"`
	Volume  string `yaml:"volume,omitempty"`
	Issue   string `yaml:"issue,omitempty"`
	ISBN    string `yaml:"isbn,omitempty"`
}

// exportedPublication is the YAML-friendly shape of one biblio.Publication.
type exportedPublication struct {
	Pubtype    string        `yaml:"pubtype"`
	Date       string        `yaml:"date"`
	Authors    []string      `yaml:"authors"`
	Refs       []exportedRef `yaml:"refs"`
	ENAbstract string        `yaml:"en_abstract,omitempty"`
	FRAbstract string        `yaml:"fr_abstract,omitempty"`
}

func toExportedRef(ref biblio.RefValue) exportedRef {
	reftype, value := ref.Base()
	out := exportedRef{Reftype: reftype, Value: value}
	switch r := ref.(type) {
	case *biblio.RefJournal:
		out.Pages = r.PagesRaw()
		out.ISSN = r.ISSN
		out.Volume = r.Volume
		out.Issue = r.Issue
	case *biblio.RefBook:
		out.Pages = r.PagesRaw()
		out.ISBN = r.ISBN
	}
	return out
}

func toExportedPublication(pub *biblio.Publication) exportedPublication {
	out := exportedPublication{
		Pubtype:    string(pub.Pubtype),
		Date:       pub.Date,
		ENAbstract: pub.ENAbstract,
		FRAbstract: pub.FRAbstract,
	}
	for _, a := range pub.Authors.Values() {
		out.Authors = append(out.Authors, a.LName+"|"+a.FName+"|"+a.FNameInitials)
	}
	for _, r := range pub.Refs.Values() {
		out.Refs = append(out.Refs, toExportedRef(r))
	}
	return out
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export every publication in the mirror to a YAML file",
	Long: `Export loads the SQL mirror and writes its full canonical publication
set as YAML, preserving every ref's identifying fields (including page
ranges, ISSN, and ISBN) so it can be re-ingested with import.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
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

	all := db.All()
	exported := make([]exportedPublication, 0, len(all))
	for _, pub := range all {
		exported = append(exported, toExportedPublication(pub))
	}

	data, err := yaml.Marshal(exported)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d publication(s) to %s\n", len(exported), args[0])
	return nil
}
