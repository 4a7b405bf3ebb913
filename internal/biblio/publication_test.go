// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longAbstract(word string) string {
	return strings.Repeat(word+" ", 20) // well over 100 characters
}

func TestNewPublication_ShortAbstractDropped(t *testing.T) {
	p := NewPublication(PubtypeArticle, "2020", nil, nil, "too short", "")
	assert.Empty(t, p.ENAbstract)
	assert.Empty(t, p.Titles())
}

func TestNewPublication_LongAbstractAdoptedAndInjectedAsRef(t *testing.T) {
	abstract := longAbstract("quantum")
	p := NewPublication(PubtypeArticle, "2020", nil, nil, abstract, "")
	assert.NotEmpty(t, p.ENAbstract)
	found := false
	for _, r := range p.Refs.Values() {
		if rt, _ := r.Base(); rt == "en_abstract" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPublicationTitle_PrefersShortestEnglishTitle(t *testing.T) {
	refs := []RefValue{
		NewRef("en_title", "A Much Longer English Title"),
		NewRef("en_title", "Short Title"),
		NewRef("fr_title", "Un Titre"),
	}
	p := NewPublication(PubtypeArticle, "2020", refs, nil, "", "")
	title, ok := p.Title()
	require.True(t, ok)
	assert.Equal(t, "short title", title)
}

func TestPublicationTitle_FallsBackToFrenchThenAny(t *testing.T) {
	refs := []RefValue{NewRef("fr_title", "Un Long Titre Francais")}
	p := NewPublication(PubtypeArticle, "2020", refs, nil, "", "")
	title, ok := p.Title()
	require.True(t, ok)
	assert.Equal(t, "un long titre francais", title)
}

func TestPublicationTitle_NoneWhenNoTitles(t *testing.T) {
	p := NewPublication(PubtypeArticle, "2020", nil, nil, "", "")
	_, ok := p.Title()
	assert.False(t, ok)
}

func TestPublicationEqual_SamePointerAlwaysEqual(t *testing.T) {
	p := NewPublication(PubtypeArticle, "2020", nil, nil, "", "")
	assert.True(t, p.Equal(p))
}

func TestPublicationEqual_SharedRefAndMatchingAuthors(t *testing.T) {
	author := NewAuthor("Smith", "John", "")
	refs := []RefValue{NewRef("doi", "10.1/x")}
	a := NewPublication(PubtypeArticle, "2020", refs, []*Author{author}, "", "")
	b := NewPublication(PubtypeArticle, "2020", refs, []*Author{author}, "", "")
	assert.True(t, a.Equal(b))
}

func TestPublicationEqual_SharedRefButDifferentAuthorsAndNoTitleOverlap(t *testing.T) {
	refs := []RefValue{NewRef("doi", "10.1/x")}
	a := NewPublication(PubtypeArticle, "2020", refs, []*Author{NewAuthor("Smith", "", "")}, "", "")
	b := NewPublication(PubtypeArticle, "2020", refs, []*Author{NewAuthor("Jones", "", "")}, "", "")
	assert.False(t, a.Equal(b))
}

func TestPublicationEqual_NoSharedRefNeverEqual(t *testing.T) {
	author := NewAuthor("Smith", "John", "")
	a := NewPublication(PubtypeArticle, "2020", []RefValue{NewRef("doi", "10.1/x")}, []*Author{author}, "", "")
	b := NewPublication(PubtypeArticle, "2020", []RefValue{NewRef("doi", "10.2/y")}, []*Author{author}, "", "")
	assert.False(t, a.Equal(b))
}

func TestPublicationMerge_PubtypePicksHigherPriority(t *testing.T) {
	a := NewPublication(PubtypeOther, "2020", nil, nil, "", "")
	b := NewPublication(PubtypeArticle, "2020", nil, nil, "", "")

	merged := a.Merge(b)

	assert.Same(t, a, merged)
	assert.Equal(t, PubtypeArticle, merged.Pubtype)
}

func TestPublicationMerge_LowerPriorityOtherDoesNotDowngrade(t *testing.T) {
	a := NewPublication(PubtypeArticle, "2020", nil, nil, "", "")
	b := NewPublication(PubtypeOther, "2020", nil, nil, "", "")

	merged := a.Merge(b)

	assert.Equal(t, PubtypeArticle, merged.Pubtype)
}

func TestPublicationMerge_UnionsRefsAndAuthors(t *testing.T) {
	a := NewPublication(PubtypeArticle, "2020", []RefValue{NewRef("doi", "10.1/x")}, []*Author{NewAuthor("Smith", "John", "")}, "", "")
	b := NewPublication(PubtypeArticle, "2020", []RefValue{NewRef("pii", "S0140673620301835")}, []*Author{NewAuthor("Jones", "Mary", "")}, "", "")

	a.Merge(b)

	assert.Equal(t, 2, a.Refs.Len())
	assert.Equal(t, 2, a.Authors.Len())
}

func TestPublicationMerge_LongerAbstractWins(t *testing.T) {
	short := longAbstract("short")
	long := longAbstract("short") + longAbstract("extra material to make this longer")
	a := NewPublication(PubtypeArticle, "2020", nil, nil, short, "")
	b := NewPublication(PubtypeArticle, "2020", nil, nil, long, "")

	a.Merge(b)

	assert.Equal(t, strings.Join(strings.Fields(long), " "), a.ENAbstract)
}

func TestPublicationMerge_MissingDateFilledFromOther(t *testing.T) {
	a := NewPublication(PubtypeArticle, "", nil, nil, "", "")
	b := NewPublication(PubtypeArticle, "2020", nil, nil, "", "")

	a.Merge(b)

	assert.Equal(t, "2020", a.Date)
}
