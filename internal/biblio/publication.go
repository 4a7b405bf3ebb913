// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"sort"
	"strings"

	"github.com/pdiddy/pubdb/pkg/lattice"
)

// Publication is the canonical record of one bibliographic item: a
// pubtype, a publication date, the set of its authors, the set of its
// refs (identifiers and titles alike), and up to one abstract per
// language. Publications are never compared or hashed by value — PubDB
// is the sole owner of canonical instances, and Equal/Merge operate on
// pointer identity plus the rules below. Construct with NewPublication;
// a zero-value Publication has nil Authors/Refs and is not usable.
type Publication struct {
	Pubtype    Pubtype
	Date       string
	Authors    *lattice.Set[*Author]
	Refs       *lattice.Set[RefValue]
	ENAbstract string
	FRAbstract string
}

const abstractAdoptionThreshold = 100

// NewPublication builds a Publication from its constituent refs and
// authors, defensively copying the refs slice so a caller's own backing
// array is never retained or mutated. An abstract is adopted — kept on
// the Publication and injected as an "en_abstract"/"fr_abstract" ref —
// only if its whitespace-normalized length is at least 100 characters;
// shorter abstracts are silently dropped, per the ingestion contract
// (adapters need not apply this gate themselves).
func NewPublication(pubtype Pubtype, date string, refs []RefValue, authors []*Author, enAbstract, frAbstract string) *Publication {
	p := &Publication{
		Pubtype: pubtype,
		Date:    date,
		Authors: lattice.NewSet[*Author](),
		Refs:    lattice.NewSet[RefValue](),
	}
	p.Authors.Update(authors)

	own := append([]RefValue(nil), refs...)
	if en := adoptAbstract(enAbstract); en != "" {
		p.ENAbstract = en
		own = append(own, NewRef("en_abstract", en))
	}
	if fr := adoptAbstract(frAbstract); fr != "" {
		p.FRAbstract = fr
		own = append(own, NewRef("fr_abstract", fr))
	}
	p.Refs.Update(own)
	return p
}

func adoptAbstract(s string) string {
	normalized := strings.Join(strings.Fields(s), " ")
	if len(normalized) < abstractAdoptionThreshold {
		return ""
	}
	return normalized
}

// Titles returns the ref values of every ref whose reftype ends in
// "_title" — the derived title set.
func (p *Publication) Titles() []string {
	var out []string
	for _, r := range p.Refs.Values() {
		reftype, value := r.Base()
		if strings.HasSuffix(reftype, "_title") {
			out = append(out, value)
		}
	}
	return out
}

// Title resolves the single "best" title deterministically: the
// shortest English title if any were supplied, else the shortest French
// title, else the shortest title of any kind; ties are broken
// lexicographically. This picks one element out of an otherwise
// unordered title set.
func (p *Publication) Title() (string, bool) {
	if t, ok := shortestTitle(p.titlesWithSuffix("en_title")); ok {
		return t, true
	}
	if t, ok := shortestTitle(p.titlesWithSuffix("fr_title")); ok {
		return t, true
	}
	return shortestTitle(p.Titles())
}

func (p *Publication) titlesWithSuffix(reftype string) []string {
	var out []string
	for _, r := range p.Refs.Values() {
		rt, value := r.Base()
		if rt == reftype {
			out = append(out, value)
		}
	}
	return out
}

func shortestTitle(titles []string) (string, bool) {
	if len(titles) == 0 {
		return "", false
	}
	sort.Slice(titles, func(i, j int) bool {
		if len(titles[i]) != len(titles[j]) {
			return len(titles[i]) < len(titles[j])
		}
		return titles[i] < titles[j]
	})
	return titles[0], true
}

// Equal reports whether p and other should be treated as the same
// bibliographic item: always true for the same pointer; otherwise true
// only if their ref sets intersect (share at least one matching ref)
// and, in addition, either their author sets are equal as sets or their
// title sets share a string.
func (p *Publication) Equal(other *Publication) bool {
	if p == other {
		return true
	}
	if len(p.Refs.Intersection(other.Refs.Values())) == 0 {
		return false
	}
	return authorSetsEqual(p.Authors, other.Authors) || titlesIntersect(p.Titles(), other.Titles())
}

func authorSetsEqual(a, b *lattice.Set[*Author]) bool {
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

func titlesIntersect(a, b []string) bool {
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		seen[t] = true
	}
	for _, t := range b {
		if seen[t] {
			return true
		}
	}
	return false
}

// Merge folds other's refs, authors, pubtype, date, and abstracts into p
// in place, preserving p's identity. Refs and authors are unioned
// through their respective lattice sets (so member objects merge
// pairwise rather than being replaced); pubtype only ever moves toward
// higher priority; abstracts are taken from the other side only if p
// lacks one, and otherwise the longer string wins; no attribute is ever
// cleared.
func (p *Publication) Merge(other *Publication) *Publication {
	if other.Pubtype.Priority() > p.Pubtype.Priority() {
		p.Pubtype = other.Pubtype
	}
	if p.Date == "" {
		p.Date = other.Date
	}
	p.Refs.MergeFrom(other.Refs.Values())
	p.Authors.MergeFrom(other.Authors.Values())
	p.ENAbstract = mergeAbstract(p.ENAbstract, other.ENAbstract)
	p.FRAbstract = mergeAbstract(p.FRAbstract, other.FRAbstract)
	return p
}

func mergeAbstract(mine, other string) string {
	if mine == "" {
		return other
	}
	if len(other) > len(mine) {
		return other
	}
	return mine
}
