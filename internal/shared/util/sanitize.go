package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// TruncateAtSentence cuts s to at most max bytes, preferring to end on a
// sentence terminator. The cut is head-biased: the opening text survives.
func TruncateAtSentence(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for i := len(cut) - 1; i >= 0; i-- {
		switch cut[i] {
		case '.', '!', '?':
			return strings.TrimRight(cut[:i+1], " \t\n")
		}
	}
	// No sentence end inside the window; fall back to the last word break.
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		return strings.TrimRight(cut[:idx], " \t\n")
	}
	return cut
}
