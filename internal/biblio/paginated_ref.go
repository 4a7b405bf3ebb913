// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"regexp"
	"strconv"
	"strings"
)

var pageDashes = strings.NewReplacer("–", "-", "—", "-", " ", "-")
var pageDigit = regexp.MustCompile(`[0-9]`)

// pageBound is a single endpoint of a page range. It is either absent,
// a parsed integer, or — when the source text had dashes but at least
// one non-numeric token ("np", "online-first") — kept verbatim as a
// "soft" string. Soft bounds still participate in equality (two refs
// with the identical soft string match) but never in range-containment
// comparisons, which require both endpoints of both sides to be ints.
type pageBound struct {
	set   bool
	isInt bool
	n     int
	soft  string
}

func noBound() pageBound       { return pageBound{} }
func intBound(n int) pageBound { return pageBound{set: true, isInt: true, n: n} }
func softBound(s string) pageBound {
	return pageBound{set: true, isInt: false, soft: s}
}

func (b pageBound) isIntSet() bool { return b.set && b.isInt }

// rawEqual is Python's plain "==": both sides must be set and of the
// same kind (int vs. soft string), with matching values.
func (b pageBound) rawEqual(o pageBound) bool {
	if b.set != o.set {
		return false
	}
	if !b.set {
		return false // neither None nor "both absent" counts as a match
	}
	if b.isInt != o.isInt {
		return false
	}
	if b.isInt {
		return b.n == o.n
	}
	return b.soft == o.soft
}

// ParsePages parses a free-form page range per the ingestion contract:
// dashes (hyphen, en dash, em dash) and spaces are treated as range
// separators; a single number yields (n, none); two numbers with the
// first not exceeding the second yield (start, end); a first number
// exceeding the second is treated as a single start page with no end;
// three or more numbers, or any non-numeric token in a string that
// still contains a digit, fall back to keeping the normalized string
// itself as a soft pstart with no pend; a string with no digit at all
// yields (none, none).
func ParsePages(raw string) (pstart, pend pageBound) {
	normalized := pageDashes.Replace(strings.TrimSpace(raw))
	if normalized == "" {
		return noBound(), noBound()
	}

	var tokens []string
	for _, t := range strings.Split(normalized, "-") {
		if t != "" {
			tokens = append(tokens, t)
		}
	}

	nums := make([]int, 0, len(tokens))
	allInt := len(tokens) > 0
	for _, t := range tokens {
		n, err := strconv.Atoi(t)
		if err != nil {
			allInt = false
			break
		}
		nums = append(nums, n)
	}

	if !allInt {
		if pageDigit.MatchString(normalized) {
			return softBound(normalized), noBound()
		}
		return noBound(), noBound()
	}

	switch len(nums) {
	case 0:
		return noBound(), noBound()
	case 1:
		return intBound(nums[0]), noBound()
	case 2:
		if nums[0] <= nums[1] {
			return intBound(nums[0]), intBound(nums[1])
		}
		return intBound(nums[0]), noBound()
	default:
		return softBound(normalized), noBound()
	}
}

// includedIn reports whether [aStart,aEnd] falls within [bStart,bEnd].
// ok is false (the comparison is untestable) unless all four bounds are
// set integers.
func includedIn(aStart, aEnd, bStart, bEnd pageBound) (within, ok bool) {
	if !aStart.isIntSet() || !aEnd.isIntSet() || !bStart.isIntSet() || !bEnd.isIntSet() {
		return false, false
	}
	return aStart.n >= bStart.n && aEnd.n <= bEnd.n, true
}

// PaginatedRef is a Ref enriched with a page range. It is the shared
// base of RefBook and RefJournal; every concrete paginated ref variant
// embeds it and reuses its Equal/Merge page logic, adding its own
// ISBN/ISSN+issue+volume checks around it.
type PaginatedRef struct {
	Reftype string
	Value   string
	PStart  pageBound
	PEnd    pageBound
}

// NewPaginatedRef builds the shared base of a paginated ref: title is
// normalized the same way a title-suffixed Ref is (trailing separators
// trimmed, lower-cased), and pagesRaw is parsed via ParsePages. A parsed
// pstart of exactly 1 is treated as "no start page" — tables of
// contents routinely list the section's first page as page 1 whether or
// not the underlying article actually starts there, so it carries no
// distinguishing information.
func NewPaginatedRef(reftype, title, pagesRaw string) *PaginatedRef {
	pstart, pend := ParsePages(pagesRaw)
	if pstart.isIntSet() && pstart.n == 1 {
		pstart = noBound()
	}
	return &PaginatedRef{
		Reftype: reftype,
		Value:   normalizeTitleLike(title),
		PStart:  pstart,
		PEnd:    pend,
	}
}

func (p *PaginatedRef) Base() (string, string) { return p.Reftype, p.Value }

// PageStart reports the paginated ref's integer start page, if any. A
// ref satisfying this with ok=true is a "hard ref" per the dedup
// matching rule; one without — a soft or absent pstart — is not.
func (p *PaginatedRef) PageStart() (int, bool) {
	return p.PStart.n, p.PStart.isIntSet()
}

// PageEnd reports the paginated ref's integer end page, if any.
func (p *PaginatedRef) PageEnd() (int, bool) {
	return p.PEnd.n, p.PEnd.isIntSet()
}

func (p *PaginatedRef) Hash() uint64 {
	r := &Ref{Reftype: p.Reftype, Value: p.Value}
	return r.Hash()
}

// pagesEqual reports whether two paginated refs' page ranges are
// consistent with naming the same item: either one's range is fully
// contained in the other's (a table-of-contents entry citing a
// narrower span than the article's full page count), or their start or
// end pages match exactly.
func pagesEqual(a, b *PaginatedRef) bool {
	if within, ok := includedIn(a.PStart, a.PEnd, b.PStart, b.PEnd); ok && within {
		return true
	}
	if within, ok := includedIn(b.PStart, b.PEnd, a.PStart, a.PEnd); ok && within {
		return true
	}
	return a.PStart.rawEqual(b.PStart) || a.PEnd.rawEqual(b.PEnd)
}

func (p *PaginatedRef) equalBase(other *PaginatedRef) bool {
	if p.Reftype != other.Reftype || p.Value != other.Value {
		return false
	}
	return pagesEqual(p, other)
}

// mergePages folds other's page range into p in place, per the original
// fixup: if p is missing either bound, adopt other's in full (filling
// pend from other only when it would extend logically past p's own
// pstart); otherwise, if the two ranges disagree, narrow to other's
// range when other's range is contained in p's.
func (p *PaginatedRef) mergePages(other *PaginatedRef) {
	noStart := !p.PStart.set
	noEnd := !p.PEnd.set
	if noStart || noEnd {
		if noStart {
			p.PStart = other.PStart
		}
		if noEnd && p.PStart.isIntSet() && other.PEnd.isIntSet() && p.PStart.n <= other.PEnd.n {
			p.PEnd = other.PEnd
		}
		return
	}
	if p.PStart.rawEqual(other.PStart) && p.PEnd.rawEqual(other.PEnd) {
		return
	}
	if within, ok := includedIn(other.PStart, other.PEnd, p.PStart, p.PEnd); ok && within {
		p.PStart, p.PEnd = other.PStart, other.PEnd
	}
}

// PagesRaw reconstructs a page-range string that NewPaginatedRef would
// parse back into the same PStart/PEnd (an end page whose start was
// dropped as page 1 is written as "1-<end>") — the form internal/sqlmirror persists
// and reloads a paginated ref's pagination through, rather than trying
// to serialize pageBound's unexported fields directly.
func (p *PaginatedRef) PagesRaw() string {
	switch {
	case p.PStart.isIntSet() && p.PEnd.isIntSet():
		return strconv.Itoa(p.PStart.n) + "-" + strconv.Itoa(p.PEnd.n)
	case p.PStart.isIntSet():
		return strconv.Itoa(p.PStart.n)
	case p.PStart.set && !p.PStart.isInt:
		return p.PStart.soft
	case !p.PStart.set && p.PEnd.isIntSet():
		return "1-" + strconv.Itoa(p.PEnd.n)
	default:
		return ""
	}
}

// RefBook is a paginated reference into a book: a chapter or section
// identified by its (lower-cased, trimmed) title, page range, and
// optionally an ISBN.
type RefBook struct {
	PaginatedRef
	ISBN string
}

func NewRefBook(title, isbn, pagesRaw string) *RefBook {
	return &RefBook{PaginatedRef: *NewPaginatedRef("book", title, pagesRaw), ISBN: isbn}
}

func (b *RefBook) Equal(other RefValue) bool {
	ob, ok := other.(*RefBook)
	if !ok {
		return false
	}
	if !b.equalBase(&ob.PaginatedRef) {
		return false
	}
	if b.ISBN != "" && ob.ISBN != "" && b.ISBN != ob.ISBN {
		return false
	}
	return true
}

func (b *RefBook) Merge(other RefValue) RefValue {
	ob := other.(*RefBook)
	b.mergePages(&ob.PaginatedRef)
	if b.ISBN == "" {
		b.ISBN = ob.ISBN
	}
	return b
}

// RefJournal is a paginated reference into a journal article: title,
// page range, and optionally issue, volume, and ISSN. ISSN is compared
// and stored as a raw string — never reformatted — so that a
// pre-normalized value such as "0028-0836" survives a merge unchanged.
type RefJournal struct {
	PaginatedRef
	Issue  string
	Volume string
	ISSN   string
}

func NewRefJournal(title, issn, issue, volume, pagesRaw string) *RefJournal {
	return &RefJournal{
		PaginatedRef: *NewPaginatedRef("journal", title, pagesRaw),
		Issue:        issue,
		Volume:       volume,
		ISSN:         issn,
	}
}

func (j *RefJournal) Equal(other RefValue) bool {
	oj, ok := other.(*RefJournal)
	if !ok {
		return false
	}
	if !j.equalBase(&oj.PaginatedRef) {
		return false
	}
	if j.Issue != oj.Issue || j.Volume != oj.Volume {
		return false
	}
	if j.ISSN != "" && oj.ISSN != "" && j.ISSN != oj.ISSN {
		return false
	}
	return true
}

func (j *RefJournal) Merge(other RefValue) RefValue {
	oj := other.(*RefJournal)
	j.mergePages(&oj.PaginatedRef)
	if j.Issue == "" {
		j.Issue = oj.Issue
	}
	if j.Volume == "" {
		j.Volume = oj.Volume
	}
	if j.ISSN == "" {
		j.ISSN = oj.ISSN
	}
	return j
}
