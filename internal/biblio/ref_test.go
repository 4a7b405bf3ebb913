// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRef_TitleNormalized(t *testing.T) {
	r := NewRef("en_title", "  The Structure Of Scientific Revolutions.  ")
	assert.Equal(t, "the structure of scientific revolutions", r.Value)
}

func TestNewRef_NonTitleKeptVerbatim(t *testing.T) {
	r := NewRef("doi", "10.1000/ABC.123")
	assert.Equal(t, "10.1000/ABC.123", r.Value)
}

func TestRefEqual_StructuralOnReftypeAndValue(t *testing.T) {
	a := NewRef("doi", "10.1/x")
	b := NewRef("doi", "10.1/x")
	c := NewRef("pii", "10.1/x")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRefHash_MatchesEquality(t *testing.T) {
	a := NewRef("doi", "10.1/x")
	b := NewRef("doi", "10.1/x")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestRefMerge_NoOpReturnsReceiver(t *testing.T) {
	a := NewRef("doi", "10.1/x")
	b := NewRef("doi", "10.1/x")
	assert.Same(t, a, a.Merge(b))
}
