// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biblio implements the deduplicating bibliographic data model:
// Author, Ref and its paginated/book/journal variants, and Publication,
// each with its own lattice equality and merge rule (see pkg/lattice).
package biblio

import "strings"

// Pubtype is a short tag classifying a Publication. The only meaning a
// Pubtype carries beyond its name is its position in the priority table
// below, used by Publication.Merge to pick the "strongest" type.
type Pubtype string

const (
	PubtypeArticle       Pubtype = "ART"
	PubtypeBookChapter   Pubtype = "COUV"
	PubtypeDocumentChap  Pubtype = "DOUV"
	PubtypeBook          Pubtype = "OUV"
	PubtypeThesis        Pubtype = "THESE"
	PubtypeHabilitation  Pubtype = "HDR"
	PubtypeMemoir        Pubtype = "MEM"
	PubtypeConference    Pubtype = "COMM"
	PubtypeReport        Pubtype = "REPORT"
	PubtypePatent        Pubtype = "PATENT"
	PubtypeMinutes       Pubtype = "MINUTES"
	PubtypeSynthesis     Pubtype = "SYNTHESE"
	PubtypeLecture       Pubtype = "LECTURE"
	PubtypeNote          Pubtype = "NOTE"
	PubtypePoster        Pubtype = "POSTER"
	PubtypeOtherReport   Pubtype = "OTHERREPORT"
	PubtypeSound         Pubtype = "SON"
	PubtypeMap           Pubtype = "MAP"
	PubtypePressConf     Pubtype = "PRESCONF"
	PubtypeOther         Pubtype = "OTHER"
	PubtypeImage         Pubtype = "IMG"
	PubtypeVideo         Pubtype = "VIDEO"
	PubtypeUndefined     Pubtype = "UNDEFINED"
)

// pubtypePriority is the fixed total order used to pick the strongest
// Pubtype during Publication.Merge. Unknown tags (including the empty
// string) have priority 0, same as UNDEFINED.
var pubtypePriority = map[Pubtype]int{
	PubtypeArticle:      100,
	PubtypeBookChapter:  76,
	PubtypeDocumentChap: 77,
	PubtypeBook:         75,
	PubtypeThesis:       75,
	PubtypeHabilitation: 75,
	PubtypeMemoir:       75,
	PubtypeConference:   50,
	PubtypeReport:       25,
	PubtypePatent:       15,
	PubtypeMinutes:      15,
	PubtypeSynthesis:    13,
	PubtypeLecture:      12,
	PubtypeNote:         11,
	PubtypePoster:       10,
	PubtypeOtherReport:  6,
	PubtypeSound:        7,
	PubtypeMap:          7,
	PubtypePressConf:    6,
	PubtypeOther:        5,
	PubtypeImage:        4,
	PubtypeVideo:        4,
	PubtypeUndefined:    0,
}

// Priority returns p's position in the fixed total order. Unrecognized
// tags (including "") return 0, the same priority as UNDEFINED.
func (p Pubtype) Priority() int {
	return pubtypePriority[p]
}

// NormalizePubtype upper-cases s and falls back to UNDEFINED for
// anything not in the fixed enum: an unrecognized pubtype maps to
// UNDEFINED.
func NormalizePubtype(s string) Pubtype {
	p := Pubtype(strings.ToUpper(strings.TrimSpace(s)))
	if _, known := pubtypePriority[p]; !known {
		return PubtypeUndefined
	}
	return p
}
