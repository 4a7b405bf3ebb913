// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/sqlmirror"
)

var queryCmd = &cobra.Command{
	Use:   "query [ref-type:value ...]",
	Short: "Look up publications in the mirror by identifier",
	Long: `Query loads the SQL mirror and looks up every given ref, printing the
publication each one resolves to. A ref is given as "reftype:value", e.g.
"doi:10.1000/xyz182" or "en_title:attention is all you need".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	refs := make([]biblio.RefValue, 0, len(args))
	for _, arg := range args {
		reftype, value, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("malformed ref %q: expected reftype:value", arg)
		}
		refs = append(refs, biblio.NewRef(reftype, value))
	}

	matches := db.LookupByRefs(refs)
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}

	for _, m := range matches {
		reftype, value := m.Ref.Base()
		title, _ := m.Pub.Title()
		var authorNames []string
		for _, a := range m.Pub.Authors.Values() {
			authorNames = append(authorNames, strings.TrimSpace(a.FName+" "+a.LName))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s:%s -> [%s] %s (%s) — %s\n",
			reftype, value, m.Pub.Pubtype, title, m.Pub.Date, strings.Join(authorNames, ", "))
	}
	return nil
}
