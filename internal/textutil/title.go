package textutil

import (
	"regexp"
	"strings"
)

var sentenceEndRe = regexp.MustCompile(`[.!?]`)

// ExtractTitle derives a title from the beginning of body text when no
// explicit title is available. It takes the first line, falling back to the
// first sentence when the line is too long.
func ExtractTitle(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = 150
	}

	firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if len(firstLine) <= maxLength {
		return firstLine
	}

	if loc := sentenceEndRe.FindStringIndex(firstLine); loc != nil {
		return strings.TrimSpace(firstLine[:loc[1]])
	}

	return strings.TrimSpace(firstLine[:maxLength]) + "..."
}
