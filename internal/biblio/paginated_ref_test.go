// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePages_SingleInteger(t *testing.T) {
	start, end := ParsePages("42")
	assert.Equal(t, intBound(42), start)
	assert.Equal(t, noBound(), end)
}

func TestParsePages_RangeAscending(t *testing.T) {
	start, end := ParsePages("12-34")
	assert.Equal(t, intBound(12), start)
	assert.Equal(t, intBound(34), end)
}

func TestParsePages_RangeDescendingKeepsStartOnly(t *testing.T) {
	start, end := ParsePages("34-12")
	assert.Equal(t, intBound(34), start)
	assert.Equal(t, noBound(), end)
}

func TestParsePages_EnDashNormalized(t *testing.T) {
	start, end := ParsePages("12–34")
	assert.Equal(t, intBound(12), start)
	assert.Equal(t, intBound(34), end)
}

func TestParsePages_SoftFormWhenNonNumericButHasDigit(t *testing.T) {
	start, end := ParsePages("np-online1")
	assert.True(t, start.set)
	assert.False(t, start.isInt)
	assert.Equal(t, noBound(), end)
}

func TestParsePages_NoDigitsAtAllIsAbsent(t *testing.T) {
	start, end := ParsePages("n/a")
	assert.Equal(t, noBound(), start)
	assert.Equal(t, noBound(), end)
}

func TestParsePages_ThreeIntegersFallsBackToSoft(t *testing.T) {
	start, end := ParsePages("1-2-3")
	assert.True(t, start.set)
	assert.False(t, start.isInt)
	assert.Equal(t, noBound(), end)
}

func TestNewPaginatedRef_PstartOfOneBecomesNone(t *testing.T) {
	p := NewPaginatedRef("journal", "some title", "1-12")
	assert.Equal(t, noBound(), p.PStart)
	assert.Equal(t, intBound(12), p.PEnd)
}

func TestRefBookEqual_ContainedRangeMatches(t *testing.T) {
	toc := NewRefBook("my chapter", "", "10-15")
	full := NewRefBook("my chapter", "", "1-50")
	assert.True(t, toc.Equal(full))
	assert.True(t, full.Equal(toc))
}

func TestRefBookEqual_ISBNMismatchBreaksEquality(t *testing.T) {
	a := NewRefBook("my chapter", "111", "10-15")
	b := NewRefBook("my chapter", "222", "10-15")
	assert.False(t, a.Equal(b))
}

func TestRefBookEqual_EmptyISBNDoesNotBlockMatch(t *testing.T) {
	a := NewRefBook("my chapter", "", "10-15")
	b := NewRefBook("my chapter", "222", "10-15")
	assert.True(t, a.Equal(b))
}

func TestRefBookMerge_FillsISBNAndNarrowsRange(t *testing.T) {
	toc := NewRefBook("my chapter", "", "10-15")
	full := NewRefBook("my chapter", "111", "1-50")

	merged := toc.Merge(full).(*RefBook)

	assert.Same(t, toc, merged)
	assert.Equal(t, "111", merged.ISBN)
	assert.Equal(t, intBound(10), merged.PStart)
	assert.Equal(t, intBound(15), merged.PEnd)
}

func TestRefJournalEqual_IssnPreservedVerbatimThroughMerge(t *testing.T) {
	// Scenario: a nature article seen once without an ISSN and once with
	// "0028-0836" must end up carrying that exact literal string, never
	// reformatted or re-validated by RefJournal itself.
	first := NewRefJournal("a discovery", "", "1", "500", "12-20")
	second := NewRefJournal("a discovery", "0028-0836", "1", "500", "12-20")

	require.True(t, first.Equal(second))
	merged := first.Merge(second).(*RefJournal)
	assert.Equal(t, "0028-0836", merged.ISSN)
}

func TestRefJournalEqual_IssueVolumeMismatchBreaksEquality(t *testing.T) {
	a := NewRefJournal("a discovery", "", "1", "500", "12-20")
	b := NewRefJournal("a discovery", "", "2", "500", "12-20")
	assert.False(t, a.Equal(b))
}

func TestRefJournalEqual_MissingIssueVolumeOnOneSideBreaksEquality(t *testing.T) {
	a := NewRefJournal("a discovery", "", "", "", "12-20")
	b := NewRefJournal("a discovery", "", "1", "500", "12-20")
	assert.False(t, a.Equal(b))
}

func TestRefJournalHash_IgnoresPagination(t *testing.T) {
	a := NewRefJournal("a discovery", "", "1", "500", "12-20")
	b := NewRefJournal("a discovery", "", "9", "999", "100-200")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestPageStart_ReportsHardRefEligibility(t *testing.T) {
	hard := NewRefJournal("t", "", "", "", "12-20")
	n, ok := hard.PageStart()
	require.True(t, ok)
	assert.Equal(t, 12, n)

	soft := NewRefJournal("t", "", "", "", "np")
	_, ok = soft.PageStart()
	assert.False(t, ok)
}

func TestPagesRaw_RoundTripsThroughParsePages(t *testing.T) {
	for _, raw := range []string{"12-20", "45", "np 12", ""} {
		j := NewRefJournal("t", "", "", "", raw)
		reparsed := NewRefJournal("t", "", "", "", j.PagesRaw())
		assert.Equal(t, j.PStart, reparsed.PStart, "raw=%q", raw)
		assert.Equal(t, j.PEnd, reparsed.PEnd, "raw=%q", raw)
	}
}
