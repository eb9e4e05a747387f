// Package textutil provides text cleaning, chunking, and title extraction
// utilities for memory-safe handling of large post content.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http[s]?://\S+`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
	codeBlockRe  = regexp.MustCompile("(?s)```.{500,}?```")
)

// Clean normalizes raw post text: collapses whitespace, replaces URLs with a
// placeholder, strips non-ASCII noise, elides huge code blocks, and enforces
// a hard length cap.
func Clean(text string, maxLength int) string {
	if text == "" {
		return ""
	}

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, "[LINK]")
	text = nonASCIIRe.ReplaceAllString(text, "")
	text = codeBlockRe.ReplaceAllString(text, "[CODE_BLOCK]")
	text = strings.TrimSpace(text)

	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength]
	}

	return text
}

// Truncate hard-caps text at max characters; used for prompt sections where
// a blunt cut is acceptable.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max]
}
