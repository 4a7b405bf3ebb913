// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAuthor_SimpleCase(t *testing.T) {
	a := NewAuthor("Smith", "John", "")
	assert.Equal(t, "Smith", a.LName)
	assert.Equal(t, "John", a.FName)
	assert.Equal(t, "J", a.FNameInitials)
}

func TestNewAuthor_NoFnameSplitsLname(t *testing.T) {
	a := NewAuthor("John Smith", "", "")
	assert.Equal(t, "Smith", a.LName)
	assert.Equal(t, "John", a.FName)
}

func TestNewAuthor_ParticleMovesToFrontOfLname(t *testing.T) {
	// Natural "given-name particles surname" order recovers the particle
	// as part of the surname via the token-walk rule.
	a := NewAuthor("Jan Van Der Berg", "", "")
	assert.Equal(t, "Van Der Berg", a.LName)
	assert.Equal(t, "Jan", a.FName)
}

func TestNewAuthor_HonorificDropped(t *testing.T) {
	a := NewAuthor("Dupont", "Mme Marie", "")
	assert.Equal(t, "Marie", a.FName)
	assert.Equal(t, "M", a.FNameInitials)
}

func TestNewAuthor_SingleLetterTokenIsInitialOnly(t *testing.T) {
	a := NewAuthor("Curie", "Marie J", "")
	assert.Equal(t, "Marie", a.FName)
	assert.Equal(t, "MJ", a.FNameInitials)
}

func TestNewAuthor_AccentsStrippedAndTitleCased(t *testing.T) {
	a := NewAuthor("müller", "", "")
	assert.Equal(t, "Muller", a.LName)
}

func TestNewAuthor_PunctuationCollapsed(t *testing.T) {
	a := NewAuthor("Smith-Jones(Bob)/X", "", "")
	assert.NotContains(t, a.LName, "-")
	assert.NotContains(t, a.LName, "(")
}

func TestNewAuthor_ExplicitInitialsOverrideDerived(t *testing.T) {
	a := NewAuthor("Smith", "John", "JQ")
	assert.Equal(t, "JQ", a.FNameInitials)
}

func TestAuthorEqual_DifferentLnameNeverEqual(t *testing.T) {
	a := NewAuthor("Smith", "John", "")
	b := NewAuthor("Jones", "John", "")
	assert.False(t, a.Equal(b))
}

func TestAuthorEqual_SharedFnameToken(t *testing.T) {
	a := NewAuthor("Smith", "John Robert", "")
	b := NewAuthor("Smith", "Robert", "")
	assert.True(t, a.Equal(b))
}

func TestAuthorEqual_NoFnameInfoOnEitherSideIsEqual(t *testing.T) {
	a := NewAuthor("Smith", "", "")
	b := NewAuthor("Smith", "", "")
	assert.True(t, a.Equal(b))
}

func TestAuthorEqual_InitialsOnOneSideFullNameOnOtherWithSharedInitial(t *testing.T) {
	full := NewAuthor("Smith", "John", "")
	initialsOnly := NewAuthor("Smith", "", "J")

	require := assert.New(t)
	require.True(full.Equal(initialsOnly))
	require.True(initialsOnly.Equal(full))
}

func TestAuthorEqual_DisjointInitialsNotEqual(t *testing.T) {
	a := NewAuthor("Smith", "", "J")
	b := NewAuthor("Smith", "", "R")
	assert.False(t, a.Equal(b))
}

func TestAuthorHash_IsLnameOnly(t *testing.T) {
	a := NewAuthor("Smith", "John", "")
	b := NewAuthor("Smith", "Robert", "")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestAuthorMerge_PrefersFullFirstNameOverInitials(t *testing.T) {
	full := NewAuthor("Smith", "John", "")
	initialsOnly := NewAuthor("Smith", "", "J")

	merged := initialsOnly.Merge(full)

	assert.Same(t, initialsOnly, merged)
	assert.Equal(t, "John", merged.FName)
}

func TestAuthorMerge_MoreTokensWins(t *testing.T) {
	a := NewAuthor("Smith", "John", "")
	b := NewAuthor("Smith", "John Robert", "")

	merged := a.Merge(b)

	assert.Equal(t, "John Robert", merged.FName)
}

func TestAuthorMerge_TieKeepsReceiver(t *testing.T) {
	a := NewAuthor("Smith", "Jon", "")
	b := NewAuthor("Smith", "John", "")

	merged := a.Merge(b)

	assert.Equal(t, "Jon", merged.FName)
}

func TestAuthorMerge_LongerInitialsWin(t *testing.T) {
	a := NewAuthor("Smith", "", "J")
	b := NewAuthor("Smith", "", "JR")

	merged := a.Merge(b)

	assert.Equal(t, "JR", merged.FNameInitials)
}

func TestAuthorMerge_IdentityStableAcrossRepeatedMerges(t *testing.T) {
	canonical := NewAuthor("Smith", "", "J")
	for i := 0; i < 5; i++ {
		next := NewAuthor("Smith", "", "J")
		merged := canonical.Merge(next)
		assert.Same(t, canonical, merged)
	}
}
