package engine

import (
	"regexp"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
)

// ForbiddenPhrases are generic acknowledgments that cause rejection.
var ForbiddenPhrases = []string{
	"interesting discussion",
	"thanks for sharing",
	"great post",
	"nice thread",
	"good topic",
	"appreciate this",
	"thanks for starting",
}

// GenericPhrases are vague filler claims that cause rejection; the list also
// guards the fallback synthesizer's own templates.
var GenericPhrases = []string{
	"many developers encounter",
	"analyze systematically",
	"time-consuming manual inspection",
	"similar patterns in your codebase",
	"complex debugging scenarios",
	"manual inspection would be",
}

// stopwords excluded from the content-overlap check.
var stopwords = map[string]bool{
	"about": true, "there": true, "their": true, "would": true,
	"could": true, "should": true, "which": true, "these": true,
	"those": true, "really": true, "where": true, "after": true,
	"before": true, "being": true, "doing": true, "having": true,
}

var contentWordRe = regexp.MustCompile(`\b\w{5,}\b`)

// QualityLimits bounds an acceptable draft.
type QualityLimits struct {
	MinLen       int
	MaxLen       int
	MinSentences int
	MaxSentences int
	BrandName    string
}

// ValidateQuality is the deterministic acceptance gate applied to every
// draft. Rules run in order and the first failure is reported, but all
// metrics are computed regardless for diagnostics.
func ValidateQuality(draft string, post *types.NormalizedPost, limits QualityLimits) types.QualityVerdict {
	metrics := types.QualityMetrics{
		Length:        len(draft),
		SentenceCount: CountSentences(draft),
	}

	lower := strings.ToLower(draft)
	metrics.HasBrandMention = strings.Contains(lower, strings.ToLower(limits.BrandName))
	for _, phrase := range ForbiddenPhrases {
		if strings.Contains(lower, phrase) {
			metrics.ForbiddenPhraseHit = phrase
			break
		}
	}
	for _, phrase := range GenericPhrases {
		if strings.Contains(lower, phrase) {
			metrics.GenericPhraseHits = append(metrics.GenericPhraseHits, phrase)
		}
	}
	metrics.ContentOverlapCount = contentOverlap(draft, post.Title+" "+post.Content)

	verdict := types.QualityVerdict{IsValid: true, Metrics: metrics}
	fail := func(reason string) types.QualityVerdict {
		verdict.IsValid = false
		verdict.FailureReason = reason
		return verdict
	}

	switch {
	case metrics.Length < limits.MinLen:
		return fail("too_short")
	case metrics.Length > limits.MaxLen:
		return fail("too_long")
	case metrics.SentenceCount < limits.MinSentences:
		return fail("too_few_sentences")
	case metrics.SentenceCount > limits.MaxSentences:
		return fail("too_many_sentences")
	case !metrics.HasBrandMention:
		return fail("no_brand_mention")
	case metrics.ForbiddenPhraseHit != "":
		return fail("contains_forbidden_phrase")
	case len(metrics.GenericPhraseHits) > 0:
		return fail("contains_generic_phrases")
	case metrics.ContentOverlapCount < 2:
		return fail("insufficient_content_reference")
	}

	return verdict
}

// CountSentences counts non-empty segments separated by '.', '!' or '?'.
func CountSentences(text string) int {
	count := 0
	for _, segment := range sentenceSplitRe.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	return count
}

// contentOverlap counts content words (length >= 5, lowercased,
// stopword-filtered) shared between the draft and the post.
func contentOverlap(draft, postText string) int {
	draftWords := contentWords(draft)
	postWords := contentWords(postText)

	overlap := 0
	for w := range draftWords {
		if postWords[w] {
			overlap++
		}
	}
	return overlap
}

func contentWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range contentWordRe.FindAllString(strings.ToLower(text), -1) {
		if !stopwords[w] {
			words[w] = true
		}
	}
	return words
}
