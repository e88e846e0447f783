// Package rank holds the query parsing, match scoring and snippet helpers
// shared by the search adapters.
package rank

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultLimit   = 40
	MaxLimit       = 100
	MinQueryLength = 2
	MaxQueryLength = 180

	// SnippetRadius is the number of characters kept on each side of a
	// snippet hit.
	SnippetRadius = 90
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// ErrEmptyQuery and ErrShortQuery are the two ways ParseQuery rejects input.
var (
	ErrEmptyQuery = errors.New("Search query is required.")
	ErrShortQuery = errors.New("Search query must be at least 2 characters.")
)

// ParseQuery trims and bounds a raw search query.
func ParseQuery(raw string) (string, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return "", ErrShortQuery
	}
	return truncateRunes(query, MaxQueryLength), nil
}

// ParseLimit applies the default and clamps a requested result limit.
func ParseLimit(raw *int) int {
	if raw == nil {
		return DefaultLimit
	}
	limit := *raw
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ScoreTextMatch scores a case-insensitive needle against a haystack. The
// constants are tuned against the search UI and are part of the contract:
// exact match 220, prefix 170, substring 120 plus an early-position bonus.
func ScoreTextMatch(haystack, needleLower string) int {
	if haystack == "" {
		return 0
	}

	value := strings.ToLower(haystack)
	if value == needleLower {
		return 220
	}
	if strings.HasPrefix(value, needleLower) {
		return 170
	}

	index := strings.Index(value, needleLower)
	if index == -1 {
		return 0
	}

	position := utf8.RuneCountInString(value[:index])
	earlyBonus := 40 - position/4
	if earlyBonus < 0 {
		earlyBonus = 0
	}
	return 120 + earlyBonus
}

// NormalizeWhitespace collapses whitespace runs to single spaces and trims.
func NormalizeWhitespace(value string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(value, " "))
}

// ExtractSnippet returns a whitespace-normalized window of text around the
// first occurrence of needleLower, with ellipses marking clipped edges. When
// the needle is absent it returns the leading 2*radius characters. The second
// return is false when there is no text to snippet.
func ExtractSnippet(text, needleLower string, radius int) (string, bool) {
	if text == "" {
		return "", false
	}

	normalized := NormalizeWhitespace(text)
	if normalized == "" {
		return "", false
	}

	runes := []rune(normalized)
	lower := strings.ToLower(normalized)
	index := strings.Index(lower, needleLower)
	if index == -1 {
		if len(runes) <= radius*2 {
			return normalized, true
		}
		return string(runes[:radius*2]) + "…", true
	}

	runeIndex := utf8.RuneCountInString(lower[:index])
	needleLen := utf8.RuneCountInString(needleLower)

	start := runeIndex - radius
	if start < 0 {
		start = 0
	}
	end := runeIndex + needleLen + radius
	if end > len(runes) {
		end = len(runes)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	prefix := ""
	if start > 0 {
		prefix = "…"
	}
	suffix := ""
	if end < len(runes) {
		suffix = "…"
	}
	return prefix + snippet + suffix, true
}

// SortTimeValue converts an ISO-8601 timestamp into a sortable epoch value;
// unparseable input sorts first.
func SortTimeValue(raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return float64(parsed.UnixNano()) / float64(time.Second)
		}
	}
	return 0
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

// TruncateChars bounds a string to limit characters.
func TruncateChars(value string, limit int) string {
	return truncateRunes(value, limit)
}
