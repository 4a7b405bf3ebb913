// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openarchive implements an ingest.Adapter over the HAL
// (Hyper Articles en Ligne) search API, translating its flat,
// suffix-typed JSON record shape into biblio.Publication values.
package openarchive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/httpcache"
	"github.com/pdiddy/pubdb/internal/ingest"
)

// searchBase is the HAL search endpoint. Declared as a var so tests can
// substitute an httptest server.
var searchBase = "https://api.archives-ouvertes.fr/search/"

// requestedFields is the HAL "fl" parameter: every field getIDs and
// recordToPublication know how to interpret, plus the
// identification/journal/book fields needed to build Ref variants.
var requestedFields = []string{
	"authFullName_s", "producedDate_tdate", "en_abstract_s", "fr_abstract_s",
	"*_title_s", "*Id_s", "isbn_s", "bookTitle_s", "conferenceTitle_s", "docType_s",
	"journalTitle_s", "journalEissn_s", "issue_s", "volume_s", "page_s",
}

// Backend queries the HAL API.
type Backend struct {
	Client *http.Client
	// Cache, when set, serves and stores search responses through an
	// httpcache.Cache instead of fetching on every call.
	Cache *httpcache.Cache
	// Rows caps the number of records requested per query; 0 uses a
	// default of 10000 (HAL author searches are rarely paged).
	Rows int
	// BaseURL overrides the search endpoint; empty uses the production one.
	BaseURL string
}

func (b *Backend) Name() string { return "openarchive" }

// Fetch runs author as a HAL authFullName_t query and streams the
// resulting records translated to Publications, or an error Record per
// malformed entry, on the returned channel.
func (b *Backend) Fetch(ctx context.Context, author string) <-chan ingest.Record {
	ch := make(chan ingest.Record)
	go func() {
		defer close(ch)

		rows := b.Rows
		if rows <= 0 {
			rows = 10000
		}
		params := url.Values{
			"q":    {"authFullName_t:" + author},
			"fl":   {strings.Join(requestedFields, ",")},
			"wt":   {"json"},
			"rows": {fmt.Sprintf("%d", rows)},
		}

		base := b.BaseURL
		if base == "" {
			base = searchBase
		}

		client := b.Client
		if client == nil {
			client = http.DefaultClient
		}
		body, err := ingest.FetchBody(ctx, client, b.Cache, base+"?"+params.Encode())
		if err != nil {
			ch <- ingest.Record{Err: fmt.Errorf("openarchive: %w", err)}
			return
		}

		var parsed haLResponse
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&parsed); err != nil {
			ch <- ingest.Record{Err: fmt.Errorf("openarchive: parsing response: %w", err)}
			return
		}

		for _, raw := range parsed.Response.Docs {
			pub, err := recordToPublication(raw)
			select {
			case ch <- ingest.Record{Pub: pub, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

type haLResponse struct {
	Response struct {
		Docs []json.RawMessage `json:"docs"`
	} `json:"response"`
}

// haLDoc carries the fields recordToPublication interprets directly.
// The identifier/title fields (*Id_s, *_title_s) are suffix-matched
// instead, since HAL's record shape is an open-ended set of keys rather
// than a fixed schema — see getIDs.
type haLDoc struct {
	AuthFullNameS     []string `json:"authFullName_s"`
	ProducedDateTdate string   `json:"producedDate_tdate"`
	EnAbstractS       []string `json:"en_abstract_s"`
	FrAbstractS       []string `json:"fr_abstract_s"`
	DocTypeS          string   `json:"docType_s"`
	PageS             string   `json:"page_s"`
	JournalTitleS     string   `json:"journalTitle_s"`
	JournalEissnS     string   `json:"journalEissn_s"`
	IssueS            []string `json:"issue_s"`
	VolumeS           string   `json:"volume_s"`
	BookTitleS        string   `json:"bookTitle_s"`
	ConferenceTitleS  string   `json:"conferenceTitle_s"`
	IsbnS             string   `json:"isbn_s"`
}

// recordToPublication translates one HAL record into a Publication. A
// record with no usable identifiers or no authors is malformed input —
// it is reported as an Err, never a panic or a half-built Publication.
func recordToPublication(raw json.RawMessage) (*biblio.Publication, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("openarchive: decoding record fields: %w", err)
	}
	var doc haLDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("openarchive: decoding record: %w", err)
	}

	refs := getIDs(fields, doc)
	if len(refs) == 0 {
		return nil, fmt.Errorf("openarchive: record has no usable identifiers")
	}

	if len(doc.AuthFullNameS) == 0 {
		return nil, fmt.Errorf("openarchive: record has no authors")
	}
	authors := make([]*biblio.Author, 0, len(doc.AuthFullNameS))
	for _, name := range doc.AuthFullNameS {
		authors = append(authors, biblio.NewAuthor(name, "", ""))
	}

	pubtype := biblio.PubtypeUndefined
	if doc.DocTypeS != "" {
		pubtype = biblio.NormalizePubtype(doc.DocTypeS)
	}

	return biblio.NewPublication(pubtype, doc.ProducedDateTdate, refs, authors,
		strings.Join(doc.EnAbstractS, " "), strings.Join(doc.FrAbstractS, " ")), nil
}

// getIDs walks every field ending in "Id_s" or "_title_s" (HAL's
// suffix-typed identifier/title convention) into plain Refs, then adds
// a RefJournal/RefBook if the record carries page and journal/book
// metadata.
func getIDs(fields map[string]json.RawMessage, doc haLDoc) []biblio.RefValue {
	var refs []biblio.RefValue

	for key, raw := range fields {
		switch {
		case strings.HasSuffix(key, "Id_s"):
			if key == "europeanProjectCallId_s" {
				continue
			}
			reftype := strings.TrimSuffix(key, "Id_s")
			for _, v := range decodeStringOrSlice(raw) {
				if reftype == "pii" {
					if cleaned, ok := biblio.CleanPII(v); ok {
						refs = append(refs, biblio.NewRef("pii", cleaned))
					}
					continue
				}
				refs = append(refs, biblio.NewRef(reftype, v))
			}
		case strings.HasSuffix(key, "_title_s"):
			reftype := strings.TrimSuffix(key, "_s")
			for _, v := range decodeStringOrSlice(raw) {
				refs = append(refs, biblio.NewRef(reftype, v))
			}
		}
	}

	if doc.PageS != "" {
		if doc.JournalTitleS != "" && len(doc.IssueS) > 0 {
			issn := doc.JournalEissnS
			if !biblio.IsValidISSN(issn) {
				issn = ""
			}
			for _, issue := range doc.IssueS {
				refs = append(refs, biblio.NewRefJournal(doc.JournalTitleS, issn, issue, doc.VolumeS, doc.PageS))
			}
		}
		bookTitle := doc.ConferenceTitleS
		if bookTitle == "" {
			bookTitle = doc.BookTitleS
		}
		if bookTitle != "" {
			refs = append(refs, biblio.NewRefBook(bookTitle, doc.IsbnS, doc.PageS))
		}
	}

	return refs
}

// decodeStringOrSlice handles HAL's multivalue-or-scalar JSON fields:
// depending on the field, the same key may hold a bare string or a
// JSON array of strings.
func decodeStringOrSlice(raw json.RawMessage) []string {
	var multi []string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return multi
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
