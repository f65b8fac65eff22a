// Package textx provides small text utilities shared by the extraction and
// chunking paths.
package textx

import (
	"strings"
)

var crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines rewrites CRLF and bare CR line endings to LF so that
// downstream blank-line handling only has to consider \n.
func NormalizeNewlines(s string) string {
	return crlf.Replace(s)
}

// SanitizeText normalizes line endings, drops control characters other than
// tab and newline, and trims surrounding whitespace. Newlines are preserved
// because paragraph boundaries matter to the chunker.
func SanitizeText(s string) string {
	s = NormalizeNewlines(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || (r >= 32 && r != 127) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
