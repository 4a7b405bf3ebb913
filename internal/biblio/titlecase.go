// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import "unicode"

// titleCase mirrors Python's str.title(): every letter that immediately
// follows a non-letter (or starts the string) is upper-cased, every other
// letter is lower-cased. Unlike strings.Title (and unlike a naive
// per-word title case), this also fires after punctuation such as a
// hyphen, so "jean-paul" becomes "Jean-Paul".
func titleCase(s string) string {
	runes := []rune(s)
	prevIsLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevIsLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevIsLetter = true
		} else {
			prevIsLetter = false
		}
	}
	return string(runes)
}
