// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubdb implements the deduplicating publication database: a
// single-threaded, synchronous index that owns every canonical Author,
// Ref, and Publication it returns. See internal/biblio for the entity
// equality/merge rules this package builds on.
package pubdb

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/pubdb/internal/biblio"
	"github.com/pdiddy/pubdb/pkg/lattice"
)

// ErrAmbiguousLookup is returned by Get when the supplied refs resolve to
// more than one distinct publication — a caller/index-corruption error,
// never something Add produces on its own.
var ErrAmbiguousLookup = errors.New("pubdb: ambiguous lookup")

// DB is the publication index: a ref→publication map and an
// author→publications multimap, both built on the lattice containers in
// pkg/lattice. It is not safe for concurrent use.
type DB struct {
	refs    *lattice.KeyedMap[biblio.RefValue, *biblio.Publication]
	authors *lattice.KeyedMultimap[*biblio.Author, *biblio.Publication]
	log     io.Writer
}

// New builds an empty DB. Merge decisions are reported to log; pass
// io.Discard to silence them.
func New(log io.Writer) *DB {
	if log == nil {
		log = io.Discard
	}
	return &DB{
		refs:    lattice.NewKeyedMap[biblio.RefValue, *biblio.Publication](),
		authors: lattice.NewKeyedMultimap[*biblio.Author, *biblio.Publication](),
		log:     log,
	}
}

// Add inserts pub, merging it into whichever existing publication it
// matches if any, and returns the resulting canonical Publication (which
// may or may not be pub itself).
//
// The matching rule: scan every ref of pub already present in the index,
// grouping the candidate publications they point to. If any candidate is
// publication-equal to pub outright, it wins immediately. Otherwise, if
// any candidate shares at least one "hard" ref — any non-paginated ref,
// or a paginated ref with an integer start page, as opposed to a soft
// free-form one — the candidate with the most hard-ref overlap wins,
// ties going to whichever candidate was encountered first. If no
// candidate matches at all, pub is new: its ref and author sets are
// canonicalized into the indices in place.
func (db *DB) Add(pub *biblio.Publication) *biblio.Publication {
	var order []*biblio.Publication
	seen := make(map[*biblio.Publication]bool)
	hardMatches := make(map[*biblio.Publication][]biblio.RefValue)
	var exact *biblio.Publication

	for _, ref := range pub.Refs.Values() {
		candidate, ok := db.refs.Get(ref)
		if !ok {
			continue
		}
		if !seen[candidate] {
			seen[candidate] = true
			order = append(order, candidate)
		}
		if isHardRef(ref) {
			hardMatches[candidate] = append(hardMatches[candidate], ref)
		}
		if candidate.Equal(pub) {
			exact = candidate
			break
		}
	}

	chosen := exact
	var matchedOn []biblio.RefValue
	if chosen == nil {
		best := 0
		for _, c := range order {
			if n := len(hardMatches[c]); n > best {
				best = n
				chosen = c
				matchedOn = hardMatches[c]
			}
		}
	}

	if chosen != nil {
		if exact == nil {
			fmt.Fprintf(db.log, "pubdb: merging publication on behalf of %d matching ref(s)\n", len(matchedOn))
		}
		chosen.Merge(pub)
		db.republish(chosen)
		return chosen
	}

	canonRefs := db.refs.Update(pub.Refs.Values(), repeat(pub, pub.Refs.Len()))
	pub.Refs = lattice.NewSetFrom(canonRefs...)
	canonAuthors := db.authors.Update(pub.Authors.Values(), repeat(pub, pub.Authors.Len()))
	pub.Authors = lattice.NewSetFrom(canonAuthors...)
	return pub
}

// republish re-registers every ref and author of pub into the global
// indices after a merge: every ref of the existing publication goes
// back into ref_to_pub and every author into author_to_pubs, replacing
// any still-duplicate references/authors with their canonical
// instances.
func (db *DB) republish(pub *biblio.Publication) {
	refs := pub.Refs.Values()
	db.refs.Update(refs, repeat(pub, len(refs)))
	authors := pub.Authors.Values()
	db.authors.Update(authors, repeat(pub, len(authors)))
}

func repeat(pub *biblio.Publication, n int) []*biblio.Publication {
	out := make([]*biblio.Publication, n)
	for i := range out {
		out[i] = pub
	}
	return out
}

// isHardRef reports whether ref counts as a "hard" match for the merge
// tie-break: any ref that isn't paginated, or a paginated ref whose
// start page was parsed as a plain integer rather than kept as a soft
// free-form string.
func isHardRef(ref biblio.RefValue) bool {
	type paginated interface {
		PageStart() (int, bool)
	}
	if p, ok := ref.(paginated); ok {
		_, isInt := p.PageStart()
		return isInt
	}
	return true
}

// Get returns the single publication whose author set equals authors
// and which appears in the ref index under any of refs. It returns
// (nil, nil) if none match, and wraps ErrAmbiguousLookup if more than
// one distinct publication matches — that indicates index corruption or
// caller misuse, never something Add itself can produce.
func (db *DB) Get(refs []biblio.RefValue, authors []*biblio.Author) (*biblio.Publication, error) {
	target := lattice.NewSetFrom(authors...)

	seen := make(map[*biblio.Publication]bool)
	var found []*biblio.Publication
	for _, ref := range refs {
		pub, ok := db.refs.Get(ref)
		if !ok {
			continue
		}
		if !authorSetsEqual(pub.Authors, target) {
			continue
		}
		if !seen[pub] {
			seen[pub] = true
			found = append(found, pub)
		}
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d publications matched", ErrAmbiguousLookup, len(found))
	}
}

func authorSetsEqual(a, b *lattice.Set[*biblio.Author]) bool {
	av, bv := a.Values(), b.Values()
	if len(av) != len(bv) {
		return false
	}
	for _, x := range av {
		if !b.Contains(x) {
			return false
		}
	}
	return true
}

// All returns every distinct canonical publication currently indexed,
// in unspecified order — the walk internal/sqlmirror.Mirror.Save uses
// to snapshot the whole database.
func (db *DB) All() []*biblio.Publication {
	seen := make(map[*biblio.Publication]bool)
	var out []*biblio.Publication
	for _, ref := range db.refs.Keys() {
		pub, ok := db.refs.Get(ref)
		if !ok || seen[pub] {
			continue
		}
		seen[pub] = true
		out = append(out, pub)
	}
	return out
}

// RefMatch pairs a queried ref with the publication it resolved to.
type RefMatch struct {
	Ref biblio.RefValue
	Pub *biblio.Publication
}

// LookupByRefs returns every (ref, publication) pair among refs present
// in the index, for diagnostics.
func (db *DB) LookupByRefs(refs []biblio.RefValue) []RefMatch {
	var out []RefMatch
	for _, ref := range refs {
		if pub, ok := db.refs.Get(ref); ok {
			out = append(out, RefMatch{Ref: ref, Pub: pub})
		}
	}
	return out
}
