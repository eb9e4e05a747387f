package engine

import (
	"regexp"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
)

// knownTechnologies are terms worth naming explicitly in prompts.
var knownTechnologies = []string{
	"React", "TypeScript", "JavaScript", "Python", "Go", "Rust", "Java",
	"Node.js", "Django", "Flask", "Kubernetes", "Docker", "PostgreSQL",
	"MongoDB", "Redis", "GraphQL", "useEffect", "useState", "API",
}

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	problemWords    = []string{"trouble", "issue", "error", "stuck", "failing", "problem", "broken", "crash"}
)

// ExtractKeyPoints pulls short facts out of a post: the first question, the
// named technologies, and the first problem statement. The ordered list is
// capped at types.MaxKeyPoints.
func ExtractKeyPoints(title, content string) []types.KeyPoint {
	var points []types.KeyPoint

	// First question in the content.
	if strings.Contains(content, "?") {
		for _, segment := range strings.SplitAfter(content, "?") {
			segment = strings.TrimSpace(segment)
			if strings.HasSuffix(segment, "?") {
				// Take only the question's own sentence.
				if idx := lastSentenceBreak(segment[:len(segment)-1]); idx >= 0 {
					segment = strings.TrimSpace(segment[idx+1:])
				}
				if len(segment) > 200 {
					segment = segment[:200]
				}
				points = append(points, types.KeyPoint("Question: "+segment))
				break
			}
		}
	}

	// Named technologies, in mention order.
	combined := title + " " + content
	var techs []string
	for _, tech := range knownTechnologies {
		if containsWord(combined, tech) {
			techs = append(techs, tech)
		}
		if len(techs) == 3 {
			break
		}
	}
	if len(techs) > 0 {
		points = append(points, types.KeyPoint("Technologies: "+strings.Join(techs, ", ")))
	}

	// First sentence carrying a problem indicator.
	for _, sentence := range sentenceSplitRe.Split(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, w := range problemWords {
			if strings.Contains(lower, w) {
				if len(sentence) > 200 {
					sentence = sentence[:200]
				}
				points = append(points, types.KeyPoint("Problem: "+sentence))
				break
			}
		}
		if len(points) > 0 && strings.HasPrefix(string(points[len(points)-1]), "Problem:") {
			break
		}
	}

	if len(points) > types.MaxKeyPoints {
		points = points[:types.MaxKeyPoints]
	}

	return points
}

// containsWord reports a case-insensitive whole-ish word match; dotted names
// like Node.js match as plain substrings.
func containsWord(text, word string) bool {
	lowerText := strings.ToLower(text)
	lowerWord := strings.ToLower(word)
	idx := strings.Index(lowerText, lowerWord)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(lowerText[idx-1])
		afterIdx := idx + len(lowerWord)
		after := afterIdx >= len(lowerText) || !isWordChar(lowerText[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lowerText[idx+1:], lowerWord)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

// lastSentenceBreak returns the index of the last sentence terminator in s,
// or -1.
func lastSentenceBreak(s string) int {
	best := -1
	for _, stop := range []byte{'.', '!', '?'} {
		if idx := strings.LastIndexByte(s, stop); idx > best {
			best = idx
		}
	}
	return best
}
