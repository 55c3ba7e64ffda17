package util

import "strings"

// NormalizeText lower-cases s and collapses every run of characters outside
// [a-z0-9-] into a single space, so phrase matching is stable across line
// breaks and punctuation. Hyphens survive because ruleset terms carry them.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CountTerm counts non-overlapping, word-bounded occurrences of term in
// text. Both arguments must already be normalized.
func CountTerm(text, term string) int {
	count := 0
	offset := 0
	for {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return count
		}
		start := offset + idx
		end := start + len(term)
		startOK := start == 0 || text[start-1] == ' '
		endOK := end == len(text) || text[end] == ' '
		if startOK && endOK {
			count++
		}
		offset = end
	}
}

// WordCount reports the number of space-separated words in normalized text.
func WordCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, " ") + 1
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single dash. The result may be empty.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
