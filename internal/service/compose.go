package service

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s_-]+`)
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
)

const (
	wordsPerMinute = 200
	excerptLength  = 150
)

// Slugify derives a URL slug from a post title: lowercase, punctuation
// stripped, whitespace runs collapsed to single hyphens. An empty result
// falls back to "untitled-post". The function is idempotent, so an existing
// slug passes through unchanged.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled-post"
	}
	return s
}

// StripTags removes HTML tags from content, leaving the text between them.
func StripTags(content string) string {
	return htmlTagRe.ReplaceAllString(content, "")
}

// ReadTime estimates reading time in whole minutes at 200 words per minute.
// Content is stripped of markup first; the result is never below one minute.
func ReadTime(content string) int {
	words := len(strings.Fields(StripTags(content)))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt produces a plain-text preview of at most 150 characters, with an
// ellipsis appended when the content was truncated.
func Excerpt(content string) string {
	text := strings.TrimSpace(StripTags(content))
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	return string([]rune(text)[:excerptLength]) + "..."
}
