// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblio

import (
	"regexp"
	"strings"
)

var (
	issnSeparators = strings.NewReplacer("-", "", " ", "")
	issnPattern    = regexp.MustCompile(`^[0-9]{7}[0-9X]$`)
)

// IsValidISSN reports whether issn is a well-formed 8-character ISSN once
// hyphens and spaces are stripped (7 digits plus a digit-or-X check
// character). Adapters use this to filter malformed ISSNs before handing
// them to NewRefJournal; RefJournal itself stores whatever ISSN string it
// is given verbatim and compares it as plain text — if both sides have
// non-empty ISSNs they must match — so a pre-formatted value like
// "0028-0836" round-trips unchanged through equality and merge.
func IsValidISSN(issn string) bool {
	t := issnSeparators.Replace(strings.TrimSpace(issn))
	return issnPattern.MatchString(strings.ToUpper(t))
}
