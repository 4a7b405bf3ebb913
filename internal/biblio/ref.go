// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"hash/fnv"
	"strings"
)

// RefValue is satisfied by every ref variant — the plain Ref, and the
// paginated RefBook/RefJournal — so that a single PubDB ref index can
// hold any of them. It mirrors the duck typing the original Python
// model relies on: PaginatedRef.__eq__ reaches into "other.reftype" and
// "other.ref" without caring which concrete subclass other is.
type RefValue interface {
	Hash() uint64
	Equal(other RefValue) bool
	Merge(other RefValue) RefValue
	// Base returns the identifying (reftype, normalized value) pair
	// every ref variant carries.
	Base() (reftype, value string)
}

// Ref is an identifier-based reference: a DOI, a PII, an ISBN standing
// alone, or a normalized title. Reftype values ending in "title" get
// their value lowercased and stripped of trailing separators on
// construction, since titles are free text and need fuzzy-ish
// normalization to compare usefully; other reftypes (doi, pii, isbn) are
// stored as given; callers are expected to have already normalized
// those (see CleanPII, IsValidISSN).
type Ref struct {
	Reftype string
	Value   string
}

// NewRef builds a Ref, normalizing the value when reftype names a title
// field: trailing dots/spaces are trimmed, leading whitespace is
// stripped, and the result is lower-cased.
func NewRef(reftype, value string) *Ref {
	if strings.HasSuffix(reftype, "title") {
		value = normalizeTitleLike(value)
	}
	return &Ref{Reftype: reftype, Value: value}
}

// normalizeTitleLike trims trailing '.'/' ' runs, strips leading
// whitespace, and lower-cases — the same transform titles get whether
// they arrive via a plain Ref or a PaginatedRef.
func normalizeTitleLike(s string) string {
	s = strings.TrimRight(s, ". ")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

func (r *Ref) Base() (string, string) { return r.Reftype, r.Value }

// Hash is keyed on (reftype, value) — the whole of a plain Ref's
// identity, so Hash coincides with Equal here (unlike Author or the
// paginated variants, where Hash is strictly coarser).
func (r *Ref) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.Reftype))
	h.Write([]byte{0})
	h.Write([]byte(r.Value))
	return h.Sum64()
}

func (r *Ref) Equal(other RefValue) bool {
	ot, ov := other.Base()
	return r.Reftype == ot && r.Value == ov
}

// Merge is a no-op: a plain Ref carries no information beyond its
// identity, so there is nothing to fold in.
func (r *Ref) Merge(other RefValue) RefValue { return r }
