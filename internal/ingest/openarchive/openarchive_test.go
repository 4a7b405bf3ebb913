// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openarchive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubdb/internal/biblio"
)

func rawDoc(t *testing.T, m map[string]any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestRecordToPublication_BuildsRefsAuthorsAndAbstracts(t *testing.T) {
	abstract := "An abstract long enough to be adopted: its whitespace-normalized length has to reach at least one hundred characters."
	raw := rawDoc(t, map[string]any{
		"authFullName_s":     []string{"Jane Smith"},
		"producedDate_tdate": "2020-01-01",
		"en_abstract_s":      []string{abstract},
		"docType_s":          "ART",
		"doiId_s":            "10.x/1",
		"en_title_s":         []string{"A Study"},
		"journalTitle_s":     "Nature",
		"journalEissn_s":     "0028-0836",
		"issue_s":            []string{"3"},
		"volume_s":           "5",
		"page_s":             "100-110",
	})

	pub, err := recordToPublication(raw)
	require.NoError(t, err)
	require.NotNil(t, pub)

	assert.Equal(t, biblio.PubtypeArticle, pub.Pubtype)
	assert.Equal(t, "2020-01-01", pub.Date)
	assert.Equal(t, abstract, pub.ENAbstract)

	titles := pub.Titles()
	assert.Contains(t, titles, "a study")

	var sawDOI, sawJournal bool
	for _, r := range pub.Refs.Values() {
		switch v := r.(type) {
		case *biblio.Ref:
			if v.Reftype == "doi" && v.Value == "10.x/1" {
				sawDOI = true
			}
		case *biblio.RefJournal:
			if v.Reftype == "journal" {
				sawJournal = true
			}
		}
	}
	assert.True(t, sawDOI)
	assert.True(t, sawJournal)
}

func TestRecordToPublication_DropsMalformedPII(t *testing.T) {
	raw := rawDoc(t, map[string]any{
		"authFullName_s": []string{"Jane Smith"},
		"doiId_s":        "10.x/1",
		"piiId_s":        "not-a-valid-pii",
	})

	pub, err := recordToPublication(raw)
	require.NoError(t, err)

	for _, r := range pub.Refs.Values() {
		if ref, ok := r.(*biblio.Ref); ok {
			assert.NotEqual(t, "pii", ref.Reftype)
		}
	}
}

func TestRecordToPublication_NoIdentifiersIsMalformed(t *testing.T) {
	raw := rawDoc(t, map[string]any{
		"authFullName_s": []string{"Jane Smith"},
	})

	_, err := recordToPublication(raw)
	assert.Error(t, err)
}

func TestRecordToPublication_NoAuthorsIsMalformed(t *testing.T) {
	raw := rawDoc(t, map[string]any{
		"doiId_s": "10.x/1",
	})

	_, err := recordToPublication(raw)
	assert.Error(t, err)
}

func TestBackendFetch_ParsesServerResponse(t *testing.T) {
	doc := map[string]any{
		"authFullName_s": []string{"Jane Smith"},
		"doiId_s":        "10.x/1",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{
				"docs": []map[string]any{doc},
			},
		})
	}))
	defer server.Close()

	old := searchBase
	searchBase = server.URL + "/"
	defer func() { searchBase = old }()

	b := &Backend{Client: server.Client()}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got []biblio.RefValue
	var errCount int
	for rec := range b.Fetch(ctx, "Jane Smith") {
		if rec.Err != nil {
			errCount++
			continue
		}
		got = append(got, rec.Pub.Refs.Values()...)
	}
	assert.Zero(t, errCount)
	assert.NotEmpty(t, got)
}

func TestBackendFetch_ReportsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	old := searchBase
	searchBase = server.URL + "/"
	defer func() { searchBase = old }()

	b := &Backend{Client: server.Client(), Rows: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var errs []error
	for rec := range b.Fetch(ctx, "Jane Smith") {
		if rec.Err != nil {
			errs = append(errs, rec.Err)
		}
	}
	require.Len(t, errs, 1)
}
