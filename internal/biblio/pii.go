// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import "strings"

// piiSeparators strips the punctuation a PII (Publisher Item Identifier)
// is conventionally printed with — parentheses, hyphens, slashes, and
// spaces — leaving the bare 17-character alphanumeric identifier.
var piiSeparators = strings.NewReplacer("(", "", ")", "", "-", "", "/", "", " ", "")

// CleanPII validates and normalizes a PII: after stripping the
// separators "()-/" and space, the identifier must be exactly 17
// characters and start with 'S' or 'B'. A malformed PII is always
// recovered by dropping the identifier, never surfaced as an error —
// so CleanPII reports absence via the boolean rather than an error
// value.
func CleanPII(pii string) (string, bool) {
	cleaned := piiSeparators.Replace(pii)
	if len(cleaned) != 17 {
		return "", false
	}
	if cleaned[0] != 'S' && cleaned[0] != 'B' {
		return "", false
	}
	return cleaned, true
}
