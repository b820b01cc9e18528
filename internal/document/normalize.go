package document

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize cleans raw extracted page text: Unicode is brought to NFC form
// (PDF extractors tend to emit decomposed umlauts), then every run of
// whitespace, newlines included, collapses to a single space and empty
// segments are dropped. Normalize is idempotent and never fails; empty input
// yields an empty string.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
}

// NormalizePages applies Normalize to every page of a document, returning a
// new map. A nil or empty map yields an empty map.
func NormalizePages(pages map[int]string) map[int]string {
	out := make(map[int]string, len(pages))
	for num, text := range pages {
		out[num] = Normalize(text)
	}
	return out
}
