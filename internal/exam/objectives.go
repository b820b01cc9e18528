package exam

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxObjectives      = 5
	objectiveScanPages = 3
	minObjectiveLen    = 10
	maxObjectiveLen    = 300
)

// objectiveHeaderPatterns decide whether a page carries a learning-objectives
// section at all. They run against the lower-cased page text and cover German
// and English phrasings.
var objectiveHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`lernziele`),
	regexp.MustCompile(`learning\s+(objectives|outcomes|goals)`),
	regexp.MustCompile(`after\s+(completing\s+)?this\s+(chapter|module|course)`),
	regexp.MustCompile(`by\s+the\s+end\s+of\s+this`),
	regexp.MustCompile(`students?\s+(will|can|should)`),
	regexp.MustCompile(`you\s+(will|can|should)`),
	regexp.MustCompile(`sie\s+können`),
}

// Bullet and numbered items. The normalizer flattens newlines, so markers are
// matched after any whitespace, not only at line starts; an item runs until
// the next marker.
var (
	bulletSplitPattern   = regexp.MustCompile(`(?:^|\s)[•\-*●]\s+`)
	numberedSplitPattern = regexp.MustCompile(`(?:^|\s)\d+[.)]\s+`)
	sentencePattern      = regexp.MustCompile(`(?i)(?:(?:you|students?)\s+(?:can|will|should)|sie\s+können)\s+[^.\n•●]+`)
)

// objectiveLeadPattern strips the introductory phrase ("You can ...",
// "Sie können ...", "Students will ...") from an accepted statement.
var objectiveLeadPattern = regexp.MustCompile(`(?i)^(?:you\s+(?:can|will|should)|sie\s+können|students?\s+(?:will|can|should))[\s:,]+`)

// DetectObjectives scans the first pages of a document for a learning-
// objectives section and extracts up to five objective statements. Pages are
// visited in ascending number order; a page without a recognized section
// header contributes nothing. Candidates are trimmed, stripped of their lead
// phrase, bounded to 10-300 characters and deduplicated by exact match.
// DetectObjectives is a pure function and never fails; no match yields an
// empty result.
func DetectObjectives(pages map[int]string) []string {
	var objectives []string

	for _, num := range scanOrder(pages) {
		text := pages[num]
		if !hasObjectiveHeader(text) {
			continue
		}

		for _, candidate := range extractCandidates(text) {
			if len(objectives) >= maxObjectives {
				return objectives
			}

			statement := strings.TrimSpace(objectiveLeadPattern.ReplaceAllString(candidate, ""))
			// Bounds are in characters, not bytes; umlauts must not count double.
			if n := utf8.RuneCountInString(statement); n < minObjectiveLen || n > maxObjectiveLen {
				continue
			}
			if slices.Contains(objectives, statement) {
				continue
			}
			objectives = append(objectives, statement)
		}
	}

	return objectives
}

// scanOrder returns the page numbers to examine, ascending, capped at the
// first three pages.
func scanOrder(pages map[int]string) []int {
	nums := make([]int, 0, len(pages))
	for num := range pages {
		if num >= 1 && num <= objectiveScanPages {
			nums = append(nums, num)
		}
	}
	slices.Sort(nums)
	return nums
}

func hasObjectiveHeader(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range objectiveHeaderPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// extractCandidates applies the extraction patterns in fixed order: bulleted
// items, numbered items, then explicit objective sentences. Original case is
// preserved.
func extractCandidates(text string) []string {
	var candidates []string

	for _, split := range []*regexp.Regexp{bulletSplitPattern, numberedSplitPattern} {
		parts := split.Split(text, -1)
		for _, part := range parts[1:] {
			// An item never spans a line break.
			if i := strings.IndexByte(part, '\n'); i >= 0 {
				part = part[:i]
			}
			candidates = append(candidates, strings.TrimSpace(part))
		}
	}

	for _, m := range sentencePattern.FindAllString(text, -1) {
		candidates = append(candidates, strings.TrimSpace(m))
	}

	return candidates
}
