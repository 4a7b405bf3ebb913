// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biomed implements an ingest.Adapter over the NCBI E-utilities
// API: esearch resolves an author query to a list of PubMed IDs, then
// efetch retrieves each article's MEDLINE XML record for translation
// into a biblio.Publication.
package biomed

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/httpcache"
	"github.com/pdiddy/pubdb/internal/ingest"
)

// esearchBase and efetchBase are the E-utilities endpoints. Declared as
// vars so tests can substitute an httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// maxResultCount mirrors esearch()'s 400-result skip guard: at or above
// this threshold an author-name query is too ambiguous to be worth fetching
// in full, and is skipped entirely.
const maxResultCount = 400

// Backend queries PubMed via NCBI E-utilities.
type Backend struct {
	Client *http.Client
	// Cache, when set, serves and stores esearch/efetch responses through
	// an httpcache.Cache instead of fetching on every call.
	Cache *httpcache.Cache
	// EsearchBaseURL/EfetchBaseURL override the E-utilities endpoints;
	// empty uses the production ones.
	EsearchBaseURL string
	EfetchBaseURL  string
	// MaxResultCount overrides the result-count skip guard; 0 uses 400.
	MaxResultCount int
}

func (b *Backend) Name() string { return "biomed" }

// Fetch resolves author via esearch, then efetches and translates each
// matching PubMed ID. A response with no PubmedArticle element (e.g. a
// PubmedBookArticle record) is dropped silently; any
// other failure surfaces as an Err record without aborting the stream.
func (b *Backend) Fetch(ctx context.Context, author string) <-chan ingest.Record {
	ch := make(chan ingest.Record)
	go func() {
		defer close(ch)

		client := b.Client
		if client == nil {
			client = http.DefaultClient
		}
		esearchURL := b.EsearchBaseURL
		if esearchURL == "" {
			esearchURL = esearchBase
		}
		efetchURL := b.EfetchBaseURL
		if efetchURL == "" {
			efetchURL = efetchBase
		}
		resultCap := b.MaxResultCount
		if resultCap <= 0 {
			resultCap = maxResultCount
		}

		ids, err := esearch(ctx, client, b.Cache, esearchURL, resultCap, author)
		if err != nil {
			ch <- ingest.Record{Err: fmt.Errorf("biomed: esearch: %w", err)}
			return
		}

		for _, id := range ids {
			pub, err := efetch(ctx, client, b.Cache, efetchURL, id)
			if err != nil {
				select {
				case ch <- ingest.Record{Err: fmt.Errorf("biomed: efetch %s: %w", id, err)}:
				case <-ctx.Done():
					return
				}
				continue
			}
			if pub == nil {
				continue
			}
			select {
			case ch <- ingest.Record{Pub: pub}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esearch runs term (an author name, PubMed [AU]/[FAU]-qualified) and
// returns matching PubMed IDs, or nil if the result set is too large to
// be a precise match.
func esearch(ctx context.Context, client *http.Client, cache *httpcache.Cache, baseURL string, resultCap int, term string) ([]string, error) {
	params := url.Values{
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {"1000"},
	}
	body, err := ingest.FetchBody(ctx, client, cache, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed esearchResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	count, err := strconv.Atoi(parsed.Result.Count)
	if err == nil && count >= resultCap {
		return nil, nil
	}
	return parsed.Result.IDList, nil
}

// medlineArticleSet mirrors the subset of PubMed's efetch XML this
// adapter reads — one PubmedArticle per requested ID.
type medlineArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
	PubmedData      pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	DateCreated dateParts `xml:"DateCreated"`
	Article     article   `xml:"Article"`
}

type dateParts struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type article struct {
	Language            string              `xml:"Language"`
	ArticleTitle        string              `xml:"ArticleTitle"`
	Abstract            abstractBlock       `xml:"Abstract"`
	Pagination          pagination          `xml:"Pagination"`
	Journal             journal             `xml:"Journal"`
	AuthorList          authorList          `xml:"AuthorList"`
	PublicationTypeList publicationTypeList `xml:"PublicationTypeList"`
}

type abstractBlock struct {
	Texts []string `xml:"AbstractText"`
}

type pagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
}

type journal struct {
	ISSN         string       `xml:"ISSN"`
	Title        string       `xml:"Title"`
	JournalIssue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	Issue  string `xml:"Issue"`
	Volume string `xml:"Volume"`
}

type authorList struct {
	Authors []medlineAuthor `xml:"Author"`
}

type medlineAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	Initials       string `xml:"Initials"`
	CollectiveName string `xml:"CollectiveName"`
}

type publicationTypeList struct {
	Types []string `xml:"PublicationType"`
}

type pubmedData struct {
	ArticleIDList articleIDList `xml:"ArticleIdList"`
}

type articleIDList struct {
	IDs []articleID `xml:"ArticleId"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// efetch retrieves and translates the MEDLINE record for pubmedID. It
// returns (nil, nil) when the response holds no PubmedArticle element
// (e.g. a PubmedBookArticle record).
func efetch(ctx context.Context, client *http.Client, cache *httpcache.Cache, baseURL, pubmedID string) (*biblio.Publication, error) {
	params := url.Values{
		"id":      {pubmedID},
		"db":      {"pubmed"},
		"retmode": {"xml"},
	}
	body, err := ingest.FetchBody(ctx, client, cache, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var set medlineArticleSet
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(set.Articles) == 0 {
		return nil, nil
	}

	return articleToPublication(set.Articles[0])
}

// articleToPublication is the pure translation step, kept separate from
// the HTTP call so it can be tested without a server.
func articleToPublication(a pubmedArticle) (*biblio.Publication, error) {
	art := a.MedlineCitation.Article

	var refs []biblio.RefValue
	for _, id := range a.PubmedData.ArticleIDList.IDs {
		reftype := strings.ToLower(id.IDType)
		value := strings.TrimSpace(id.Value)
		if value == "" {
			continue
		}
		if reftype == "pii" {
			cleaned, ok := biblio.CleanPII(value)
			if !ok {
				continue
			}
			value = cleaned
		}
		refs = append(refs, biblio.NewRef(reftype, value))
	}

	lang := ""
	if len(art.Language) >= 2 {
		lang = strings.ToLower(art.Language[:2])
	}

	var abstractParts []string
	for _, t := range art.Abstract.Texts {
		if s := strings.TrimSpace(t); s != "" {
			abstractParts = append(abstractParts, s)
		}
	}
	abstract := strings.Join(abstractParts, " ")

	var enAbstract, frAbstract string
	title := strings.TrimSpace(art.ArticleTitle)
	switch lang {
	case "en":
		enAbstract = abstract
		if title != "" {
			refs = append(refs, biblio.NewRef("en_title", title))
		}
	case "fr":
		frAbstract = abstract
		if title != "" {
			refs = append(refs, biblio.NewRef("fr_title", title))
		}
	}

	if pages := strings.TrimSpace(art.Pagination.MedlinePgn); pages != "" {
		issue := art.Journal.JournalIssue.Issue
		if issue == "" {
			issue = "1"
		}
		volume := art.Journal.JournalIssue.Volume
		if volume == "" {
			volume = "1"
		}
		issn := art.Journal.ISSN
		if !biblio.IsValidISSN(issn) {
			issn = ""
		}
		refs = append(refs, biblio.NewRefJournal(art.Journal.Title, issn, issue, volume, pages))
	}

	var authors []*biblio.Author
	for _, auth := range art.AuthorList.Authors {
		if auth.LastName == "" {
			continue
		}
		authors = append(authors, biblio.NewAuthor(auth.LastName, auth.ForeName, auth.Initials))
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("record has no usable identifiers")
	}
	if len(authors) == 0 {
		return nil, fmt.Errorf("record has no authors")
	}

	pubtype := classifyPubtype(art.PublicationTypeList.Types)
	date := a.MedlineCitation.DateCreated.Year
	if a.MedlineCitation.DateCreated.Month != "" {
		date += "-" + a.MedlineCitation.DateCreated.Month
	}
	if a.MedlineCitation.DateCreated.Day != "" {
		date += "-" + a.MedlineCitation.DateCreated.Day
	}

	return biblio.NewPublication(pubtype, date, refs, authors, enAbstract, frAbstract), nil
}

// classifyPubtype maps MEDLINE's free-text PublicationType list to a
// Pubtype, mirroring efetch()'s article/case-report/other cascade.
func classifyPubtype(types []string) biblio.Pubtype {
	for _, t := range types {
		if t == "Journal Article" || t == "Introductory Journal Article" {
			return biblio.PubtypeArticle
		}
	}
	for _, t := range types {
		if t == "Case Reports" {
			return biblio.PubtypeReport
		}
	}
	return biblio.PubtypeOther
}
