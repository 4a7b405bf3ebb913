// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes text to NFKD form and discards combining
// marks, the idiomatic Go equivalent of Python's
// unicodedata.normalize('NFKD', s) followed by filtering
// unicodedata.combining(c). "Étude" becomes "Etude", "Müller" becomes
// "Muller".
var diacriticStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripAccents removes combining diacritical marks from s, leaving the
// base letters. It returns s unchanged if the transform fails (should not
// happen for valid UTF-8 input).
func stripAccents(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}
