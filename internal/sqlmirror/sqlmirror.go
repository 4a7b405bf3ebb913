// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sqlmirror implements the optional persistent mirror: a
// relational snapshot of a pubdb.DB's canonical publications, authors,
// and refs, built on an idempotent CREATE-TABLE-IF-NOT-EXISTS schema
// and one transaction per record.
package sqlmirror

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/internal/pubdb"
)

// Mirror wraps the SQLite connection backing the persistent snapshot.
type Mirror struct {
	db *sql.DB
}

// Open opens or creates the mirror database at path, creating its
// schema if absent.
func Open(path string) (*Mirror, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating mirror directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening mirror database: %w", err)
	}
	m := &Mirror{db: db}
	if err := m.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return m, nil
}

// Close releases the underlying database connection.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// createSchema builds the docs, refs, refs_journals, refs_books,
// authors, authorships, and texts tables, with cascading deletes from
// docs and authors. refs_journals/refs_books carry a pages_raw column
// beyond the plain pstart/pend pair, the only way to round-trip a soft
// (non-integer) or absent page bound faithfully — see
// biblio.PaginatedRef.PagesRaw.
func (m *Mirror) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS docs (
			doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS refs (
			doc_id INTEGER NOT NULL REFERENCES docs(doc_id) ON DELETE CASCADE,
			reftype TEXT NOT NULL,
			ref TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_doc_id ON refs(doc_id)`,
		`CREATE TABLE IF NOT EXISTS refs_journals (
			doc_id INTEGER NOT NULL REFERENCES docs(doc_id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			issue TEXT,
			volume TEXT,
			issn TEXT,
			pstart INTEGER,
			pend INTEGER,
			pages_raw TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_journals_doc_id ON refs_journals(doc_id)`,
		`CREATE TABLE IF NOT EXISTS refs_books (
			doc_id INTEGER NOT NULL REFERENCES docs(doc_id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			isbn TEXT,
			pstart INTEGER,
			pend INTEGER,
			pages_raw TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_books_doc_id ON refs_books(doc_id)`,
		`CREATE TABLE IF NOT EXISTS authors (
			author_id INTEGER PRIMARY KEY AUTOINCREMENT,
			fname TEXT,
			lname TEXT NOT NULL,
			fname_initials TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS authorships (
			doc_id INTEGER NOT NULL REFERENCES docs(doc_id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES authors(author_id) ON DELETE CASCADE,
			quality TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authorships_doc_id ON authorships(doc_id)`,
		`CREATE TABLE IF NOT EXISTS texts (
			text_id INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id INTEGER NOT NULL REFERENCES docs(doc_id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			lang TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := m.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save walks every canonical publication in db (via db.All) and inserts
// it into the mirror as new rows, one transaction per publication.
// Existing rows are neither updated nor removed, so saving a DB that was
// loaded from this same mirror stores each document again. Authors shared
// across publications are inserted once and reused by pointer identity
// across the whole call.
func (m *Mirror) Save(ctx context.Context, db *pubdb.DB) error {
	authorIDs := make(map[*biblio.Author]int64)
	for _, pub := range db.All() {
		if err := m.savePublication(ctx, pub, authorIDs); err != nil {
			return fmt.Errorf("saving publication: %w", err)
		}
	}
	return nil
}

func (m *Mirror) savePublication(ctx context.Context, pub *biblio.Publication, authorIDs map[*biblio.Author]int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO docs (type, date) VALUES (?, ?)`, string(pub.Pubtype), pub.Date)
	if err != nil {
		return fmt.Errorf("inserting doc: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading doc id: %w", err)
	}

	for _, ref := range pub.Refs.Values() {
		if err := insertRef(ctx, tx, docID, ref); err != nil {
			return err
		}
	}

	for _, author := range pub.Authors.Values() {
		authorID, ok := authorIDs[author]
		if !ok {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO authors (fname, lname, fname_initials) VALUES (?, ?, ?)`,
				author.FName, author.LName, author.FNameInitials)
			if err != nil {
				return fmt.Errorf("inserting author: %w", err)
			}
			authorID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading author id: %w", err)
			}
			authorIDs[author] = authorID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authorships (doc_id, author_id, quality) VALUES (?, ?, ?)`,
			docID, authorID, ""); err != nil {
			return fmt.Errorf("inserting authorship: %w", err)
		}
	}

	if pub.ENAbstract != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO texts (doc_id, type, lang, content) VALUES (?, 'abstract', 'en', ?)`,
			docID, pub.ENAbstract); err != nil {
			return fmt.Errorf("inserting en abstract: %w", err)
		}
	}
	if pub.FRAbstract != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO texts (doc_id, type, lang, content) VALUES (?, 'abstract', 'fr', ?)`,
			docID, pub.FRAbstract); err != nil {
			return fmt.Errorf("inserting fr abstract: %w", err)
		}
	}

	return tx.Commit()
}

// insertRef dispatches a single ref to the table matching its concrete
// type.
func insertRef(ctx context.Context, tx *sql.Tx, docID int64, ref biblio.RefValue) error {
	switch v := ref.(type) {
	case *biblio.RefJournal:
		pstart, pend := pageBoundColumns(&v.PaginatedRef)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO refs_journals (doc_id, title, issue, volume, issn, pstart, pend, pages_raw)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			docID, v.Value, v.Issue, v.Volume, v.ISSN, pstart, pend, v.PagesRaw())
		if err != nil {
			return fmt.Errorf("inserting journal ref: %w", err)
		}
	case *biblio.RefBook:
		pstart, pend := pageBoundColumns(&v.PaginatedRef)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO refs_books (doc_id, title, isbn, pstart, pend, pages_raw)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			docID, v.Value, v.ISBN, pstart, pend, v.PagesRaw())
		if err != nil {
			return fmt.Errorf("inserting book ref: %w", err)
		}
	case *biblio.Ref:
		_, err := tx.ExecContext(ctx,
			`INSERT INTO refs (doc_id, reftype, ref) VALUES (?, ?, ?)`,
			docID, v.Reftype, v.Value)
		if err != nil {
			return fmt.Errorf("inserting ref: %w", err)
		}
	default:
		return fmt.Errorf("unrecognized ref type %T", ref)
	}
	return nil
}

// Load reconstructs a pubdb.DB from the mirror by replaying every
// stored document through PubDB.Add, one document at a time in doc_id
// order. Replaying rather than directly materializing the stored
// doc/ref/author rows as already-canonical publications is what makes
// the round trip hold by construction: Add re-derives whatever
// canonical identity a fresh db.Add(p) would have produced, instead of
// trying to fake it from row IDs.
func (m *Mirror) Load(ctx context.Context) (*pubdb.DB, error) {
	db := pubdb.New(io.Discard)

	rows, err := m.db.QueryContext(ctx, `SELECT doc_id, type, date FROM docs ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("querying docs: %w", err)
	}
	defer rows.Close()

	type docRow struct {
		id   int64
		typ  string
		date sql.NullString
	}
	var docs []docRow
	for rows.Next() {
		var d docRow
		if err := rows.Scan(&d.id, &d.typ, &d.date); err != nil {
			return nil, fmt.Errorf("scanning doc: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating docs: %w", err)
	}

	for _, d := range docs {
		refs, err := m.loadRefs(ctx, d.id)
		if err != nil {
			return nil, fmt.Errorf("loading refs for doc %d: %w", d.id, err)
		}
		authors, err := m.loadAuthors(ctx, d.id)
		if err != nil {
			return nil, fmt.Errorf("loading authors for doc %d: %w", d.id, err)
		}
		enAbstract, frAbstract, err := m.loadAbstracts(ctx, d.id)
		if err != nil {
			return nil, fmt.Errorf("loading abstracts for doc %d: %w", d.id, err)
		}

		pub := biblio.NewPublication(biblio.Pubtype(d.typ), d.date.String, refs, authors, enAbstract, frAbstract)
		db.Add(pub)
	}

	return db, nil
}

func (m *Mirror) loadRefs(ctx context.Context, docID int64) ([]biblio.RefValue, error) {
	var refs []biblio.RefValue

	plain, err := m.db.QueryContext(ctx, `SELECT reftype, ref FROM refs WHERE doc_id = ?`, docID)
	if err != nil {
		return nil, err
	}
	defer plain.Close()
	for plain.Next() {
		var reftype, value string
		if err := plain.Scan(&reftype, &value); err != nil {
			return nil, err
		}
		refs = append(refs, biblio.NewRef(reftype, value))
	}
	if err := plain.Err(); err != nil {
		return nil, err
	}

	journals, err := m.db.QueryContext(ctx,
		`SELECT title, issue, volume, issn, pages_raw FROM refs_journals WHERE doc_id = ?`, docID)
	if err != nil {
		return nil, err
	}
	defer journals.Close()
	for journals.Next() {
		var title, issue, volume, issn, pagesRaw sql.NullString
		if err := journals.Scan(&title, &issue, &volume, &issn, &pagesRaw); err != nil {
			return nil, err
		}
		refs = append(refs, biblio.NewRefJournal(title.String, issn.String, issue.String, volume.String, pagesRaw.String))
	}
	if err := journals.Err(); err != nil {
		return nil, err
	}

	books, err := m.db.QueryContext(ctx,
		`SELECT title, isbn, pages_raw FROM refs_books WHERE doc_id = ?`, docID)
	if err != nil {
		return nil, err
	}
	defer books.Close()
	for books.Next() {
		var title, isbn, pagesRaw sql.NullString
		if err := books.Scan(&title, &isbn, &pagesRaw); err != nil {
			return nil, err
		}
		refs = append(refs, biblio.NewRefBook(title.String, isbn.String, pagesRaw.String))
	}
	if err := books.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}

func (m *Mirror) loadAuthors(ctx context.Context, docID int64) ([]*biblio.Author, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT a.fname, a.lname, a.fname_initials
		 FROM authorships s JOIN authors a ON a.author_id = s.author_id
		 WHERE s.doc_id = ?`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*biblio.Author
	for rows.Next() {
		var fname, lname, initials sql.NullString
		if err := rows.Scan(&fname, &lname, &initials); err != nil {
			return nil, err
		}
		authors = append(authors, biblio.NewAuthor(lname.String, fname.String, initials.String))
	}
	return authors, rows.Err()
}

func (m *Mirror) loadAbstracts(ctx context.Context, docID int64) (en, fr string, err error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT lang, content FROM texts WHERE doc_id = ? AND type = 'abstract'`, docID)
	if err != nil {
		return "", "", err
	}
	defer rows.Close()
	for rows.Next() {
		var lang, content string
		if err := rows.Scan(&lang, &content); err != nil {
			return "", "", err
		}
		switch lang {
		case "en":
			en = content
		case "fr":
			fr = content
		}
	}
	return en, fr, rows.Err()
}

// pageBoundColumns returns (pstart, pend) as nullable SQL integers,
// populated only when the corresponding bound parsed as a plain
// integer — these columns stay queryable for the common case;
// pages_raw is what Load actually reconstructs from.
func pageBoundColumns(p *biblio.PaginatedRef) (pstart, pend sql.NullInt64) {
	if n, ok := p.PageStart(); ok {
		pstart = sql.NullInt64{Int64: int64(n), Valid: true}
	}
	if n, ok := p.PageEnd(); ok {
		pend = sql.NullInt64{Int64: int64(n), Valid: true}
	}
	return pstart, pend
}
