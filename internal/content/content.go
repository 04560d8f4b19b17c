// Package content holds the pure chapter-processing helpers: filename
// sanitization, validation, and markup normalization.
package content

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minChapterLength is the smallest serialized body accepted as a chapter.
const minChapterLength = 100

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeTitle replaces path-unsafe characters with an underscore. The
// result is stable under repeated application.
func SanitizeTitle(title string) string {
	return unsafeChars.ReplaceAllString(title, "_")
}

// Validate checks one chapter body. It rejects bodies under 100 characters
// and bodies whose headings or paragraphs carry no visible text. Pure; the
// caller decides what to do with the reason.
func Validate(title, htmlBody string) (bool, string) {
	if utf8.RuneCountInString(htmlBody) < minChapterLength {
		return false, fmt.Sprintf("chapter %q is too short", title)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return false, fmt.Sprintf("chapter %q cannot be parsed: %v", title, err)
	}

	hasEmptyTag := false
	doc.Find("p, h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == "" {
			hasEmptyTag = true
			return false
		}
		return true
	})
	if hasEmptyTag {
		return false, fmt.Sprintf("chapter %q contains empty tags", title)
	}

	return true, ""
}

// Normalize re-serializes the parsed markup tree so malformed or unclosed
// tags never reach the book container.
func Normalize(htmlBody string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", fmt.Errorf("parse chapter markup: %w", err)
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize chapter markup: %w", err)
	}
	return out, nil
}
