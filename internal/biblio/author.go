// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"hash/fnv"
	"regexp"
	"strings"
	"unicode/utf8"
)

// lnameParticles, once encountered among the given-name tokens, move that
// token and every token after it to the front of the last name. Order
// matters only in that membership, not position, is what's tested.
var lnameParticles = map[string]bool{
	"De": true, "Da": true, "Le": true, "El": true,
	"Van": true, "Del": true, "Von": true, "Zu": true, "Of": true,
}

// honorifics are given-name tokens that carry no identifying information
// and are dropped outright rather than folded into initials or lname.
var honorifics = map[string]bool{
	"Mr": true, "Mme": true, "Mrs": true,
}

var authorPunct = regexp.MustCompile(`[()\-/]+`)

// Author is a bibliographic author name, normalized on construction so
// that two records naming "the same" person converge to the same
// LName/FName/FNameInitials regardless of which record supplied which
// field. Construct with NewAuthor rather than assembling the struct
// directly; only then is Equal/Hash/Merge's coarser-than-equality
// contract honored.
type Author struct {
	LName         string
	FName         string
	FNameInitials string
}

// NewAuthor builds an Author from raw catalog fields, following the
// normalization pipeline: punctuation is collapsed to spaces; if no
// fname is given and lname contains whitespace, the last token of lname
// is assumed to be the true surname and everything before it the given
// name; accents are stripped and the surname title-cased; the given
// name is then walked token by token, peeling off single-letter tokens
// as bare initials, dropping honorifics, and — once a particle token is
// seen — routing it and everything after it into the front of lname
// instead of fname.
//
// Any of fname or fnameInitials may be passed as "" to mean "not
// supplied".
func NewAuthor(lname, fname, fnameInitials string) *Author {
	lname = collapsePunct(lname)

	hasFname := fname != ""
	if !hasFname {
		if idx := strings.LastIndex(lname, " "); idx >= 0 {
			candidate := strings.TrimSpace(lname[idx+1:])
			rest := strings.TrimSpace(lname[:idx])
			if candidate != "" {
				fname = rest
				lname = candidate
				hasFname = rest != ""
			}
		}
	}
	lname = titleCase(stripAccents(lname))

	var fnameParts, lnameParts, initialParts []string
	if hasFname {
		raw := stripAccents(fname)
		titled := strings.ReplaceAll(titleCase(raw), "-", " ")
		inFname := true
		for _, part := range strings.Split(titled, " ") {
			if part == "" || honorifics[part] {
				continue
			}
			initial := part[:1]
			if utf8.RuneCountInString(part) == 1 {
				initialParts = append(initialParts, initial)
				continue
			}
			if lnameParticles[part] {
				inFname = false
			}
			if inFname {
				initialParts = append(initialParts, initial)
				fnameParts = append(fnameParts, part)
			} else {
				lnameParts = append(lnameParts, part)
			}
		}
	}

	if len(lnameParts) > 0 {
		lnameParts = append(lnameParts, lname)
		lname = strings.Join(lnameParts, " ")
	}
	if fnameInitials == "" {
		fnameInitials = strings.Join(initialParts, "")
	}

	return &Author{
		LName:         lname,
		FName:         strings.Join(fnameParts, " "),
		FNameInitials: fnameInitials,
	}
}

// collapsePunct removes "()-/" from s, collapsing each run into a single
// space, and trims the result.
func collapsePunct(s string) string {
	s = authorPunct.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Hash is keyed on LName alone — a strict coarsening of Equal, which also
// looks at FName/FNameInitials. Two authors that hash alike may still
// compare unequal.
func (a *Author) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(a.LName))
	return h.Sum64()
}

// Equal reports whether a and other name the same person. Last names
// must match exactly. Given-name evidence is then consulted in a fixed
// order of preference — full first names if both sides have one, then
// shared initials if both sides have those, and if neither side carries
// any given-name information at all the authors are presumed the same
// person. This is intentionally NOT transitive: A("Smith","J") equals
// both B("Smith","John") and C("Smith","Jane") through the shared
// initial, yet B does not equal C. Never fold Authors into equivalence classes (no
// union-find) on the strength of this relation.
func (a *Author) Equal(other *Author) bool {
	if a == other {
		return true
	}
	if a.LName != other.LName {
		return false
	}
	if a.FName != "" && other.FName != "" {
		if a.FName == other.FName {
			return true
		}
		return sharesToken(a.FName, other.FName)
	}
	if a.FNameInitials != "" && other.FNameInitials != "" {
		return sharesRune(a.FNameInitials, other.FNameInitials)
	}
	return true
}

func sharesToken(a, b string) bool {
	seen := make(map[string]bool)
	for _, t := range strings.Fields(a) {
		seen[t] = true
	}
	for _, t := range strings.Fields(b) {
		if seen[t] {
			return true
		}
	}
	return false
}

func sharesRune(a, b string) bool {
	seen := make(map[rune]bool)
	for _, r := range a {
		seen[r] = true
	}
	for _, r := range b {
		if seen[r] {
			return true
		}
	}
	return false
}

// Merge folds other's given-name information into a in place and
// returns a, preserving a's identity so that every Author pointer
// handed out by a PubDB's author index stays valid across merges. When
// both sides carry a differing FName, the one with more
// whitespace-separated tokens wins; for differing FNameInitials, the
// longer string wins. Ties keep a's existing value.
func (a *Author) Merge(other *Author) *Author {
	if a.FName != other.FName {
		switch {
		case a.FName == "":
			a.FName = other.FName
		case other.FName != "" && tokenCount(other.FName) > tokenCount(a.FName):
			a.FName = other.FName
		}
	}
	if a.FNameInitials != other.FNameInitials {
		switch {
		case a.FNameInitials == "":
			a.FNameInitials = other.FNameInitials
		case len(other.FNameInitials) > len(a.FNameInitials):
			a.FNameInitials = other.FNameInitials
		}
	}
	return a
}

func tokenCount(s string) int {
	return len(strings.Fields(s))
}
