package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/prompts"
	"github.com/JonaN-tech/kilocode-ml-service/internal/textutil"
	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
)

const (
	// promptContentCap bounds the post content section of the prompt.
	promptContentCap = 1500
	// promptDocCap bounds the documentation context section.
	promptDocCap = 800
	// promptStyleCap bounds the style example section.
	promptStyleCap = 400
)

// PromptInput carries everything the prompt builder assembles into one
// generation request.
type PromptInput struct {
	Post         *types.NormalizedPost
	KeyPoints    []types.KeyPoint
	Snippets     []types.ContextSnippet
	StyleExample string
	Limits       QualityLimits
}

// BuildSystemPrompt renders the strict system instruction for a platform.
func BuildSystemPrompt(platform types.Platform, limits QualityLimits) string {
	template := prompts.MustGet("comment.json", "system")
	return prompts.Format(template, map[string]string{
		"Platform":      string(platform),
		"Brand":         limits.BrandName,
		"MinSentences":  strconv.Itoa(limits.MinSentences),
		"MaxSentences":  strconv.Itoa(limits.MaxSentences),
		"MinLen":        strconv.Itoa(limits.MinLen),
		"MaxLen":        strconv.Itoa(limits.MaxLen),
		"ForbiddenList": forbiddenList(),
	})
}

// BuildUserPrompt assembles the user prompt in fixed section order: post,
// key points, context snippets, optional style example, task instruction.
// Retry prompts name the prior rejection reason and repeat the forbidden
// list verbatim.
func BuildUserPrompt(in PromptInput, version types.PromptVersion, failureReason string) string {
	var b strings.Builder

	b.WriteString("=== POST ===\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Post.Title)
	fmt.Fprintf(&b, "\nContent:\n%s\n", textutil.Truncate(in.Post.Content, promptContentCap))

	if len(in.KeyPoints) > 0 {
		b.WriteString("\nKey points your comment must reference:\n")
		for _, p := range in.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	b.WriteString("\n\n=== " + strings.ToUpper(in.Limits.BrandName) + " CONTEXT ===\n")
	if docText := joinSnippets(in.Snippets); docText != "" {
		fmt.Fprintf(&b, "Relevant documentation:\n%s\n", textutil.Truncate(docText, promptDocCap))
	} else {
		fmt.Fprintf(&b, "%s is an AI-powered coding assistant that understands project context and helps with development tasks.\n", in.Limits.BrandName)
	}

	if in.StyleExample != "" {
		fmt.Fprintf(&b, "\n\nExample comment style (for reference):\n%s\n", textutil.Truncate(in.StyleExample, promptStyleCap))
	}

	b.WriteString("\n\n=== YOUR TASK ===\n")

	key := "task_first"
	if version == types.PromptRetry {
		key = "task_retry"
	}
	task := prompts.Format(prompts.MustGet("comment.json", key), map[string]string{
		"Brand":         in.Limits.BrandName,
		"MinSentences":  strconv.Itoa(in.Limits.MinSentences),
		"MaxSentences":  strconv.Itoa(in.Limits.MaxSentences),
		"MinLen":        strconv.Itoa(in.Limits.MinLen),
		"MaxLen":        strconv.Itoa(in.Limits.MaxLen),
		"FailureReason": failureReason,
		"ForbiddenList": forbiddenList(),
	})
	b.WriteString(task)

	return b.String()
}

// joinSnippets concatenates snippet texts for the context section.
func joinSnippets(snippets []types.ContextSnippet) string {
	var texts []string
	for i, s := range snippets {
		if i == 3 {
			break
		}
		if s.Text != "" {
			texts = append(texts, s.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func forbiddenList() string {
	var b strings.Builder
	for _, phrase := range ForbiddenPhrases {
		fmt.Fprintf(&b, "- %q\n", phrase)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
