package engine

import (
	"sort"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
)

// packEntry is one keyword-scored snippet in the static context pack.
type packEntry struct {
	ID       string
	Title    string
	Text     string
	Keywords []string
}

// staticContextPack is the fixed fallback knowledge base used when embedding
// retrieval is disabled for memory-safety reasons. Scores are integer
// keyword-match weights, not cosine similarities.
var staticContextPack = []packEntry{
	{
		ID:       "debugging",
		Title:    "Debugging support",
		Text:     "KiloCode traces control flow through unfamiliar code and suggests where to add logging or breakpoints, which shortens debugging sessions on legacy systems.",
		Keywords: []string{"debug", "debugging", "error", "bug", "breakpoint", "stack trace", "crash"},
	},
	{
		ID:       "testing",
		Title:    "Test generation",
		Text:     "KiloCode generates unit tests from existing function signatures and call sites, covering edge cases that are easy to miss by hand.",
		Keywords: []string{"test", "testing", "unit test", "coverage", "assert", "mock"},
	},
	{
		ID:       "refactoring",
		Title:    "Refactoring assistance",
		Text:     "KiloCode maps dependencies across a codebase before a refactor, so renames and extractions do not break distant callers.",
		Keywords: []string{"refactor", "refactoring", "legacy", "cleanup", "technical debt", "rewrite"},
	},
	{
		ID:       "automation",
		Title:    "Workflow automation",
		Text:     "KiloCode automates repetitive development tasks like scaffolding, migration scripts, and boilerplate so the routine parts of a workflow run themselves.",
		Keywords: []string{"automate", "automation", "workflow", "repetitive", "script", "pipeline"},
	},
	{
		ID:       "analysis",
		Title:    "Codebase analysis",
		Text:     "KiloCode builds a structural model of a project, which makes questions like where is this value set answerable without manual tracing.",
		Keywords: []string{"analyze", "analysis", "architecture", "structure", "understand", "codebase"},
	},
	{
		ID:       "context",
		Title:    "Project context",
		Text:     "KiloCode keeps project-wide context while editing, so suggestions match the conventions and APIs already used in the repository.",
		Keywords: []string{"context", "convention", "consistency", "suggestion", "completion"},
	},
	{
		ID:       "codegen",
		Title:    "Code generation",
		Text:     "KiloCode drafts implementations from a description plus the surrounding code, keeping generated code aligned with the existing style.",
		Keywords: []string{"generate", "generation", "boilerplate", "scaffold", "implement"},
	},
	{
		ID:       "review",
		Title:    "Code review",
		Text:     "KiloCode pre-reviews changes for common defects and style drift before a human reviewer sees them.",
		Keywords: []string{"review", "pull request", "pr", "merge", "feedback"},
	},
	{
		ID:       "general",
		Title:    "General",
		Text:     "KiloCode is an AI-powered coding assistant that understands project context and helps with development tasks.",
		Keywords: nil,
	},
}

// StaticContext scores the pack against the post text and returns matching
// snippets ordered by descending keyword weight. At least one snippet (the
// general entry) is always returned.
func StaticContext(title, content string, k int) []types.ContextSnippet {
	if k <= 0 {
		k = 3
	}
	lower := strings.ToLower(title + " " + content)

	type scored struct {
		entry packEntry
		score int
		order int
	}

	var matches []scored
	for i, entry := range staticContextPack {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{entry: entry, score: score, order: i})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].score > matches[b].score
	})

	if len(matches) == 0 {
		general := staticContextPack[len(staticContextPack)-1]
		return []types.ContextSnippet{{
			ID:             general.ID,
			Title:          general.Title,
			Text:           general.Text,
			RelevanceScore: 0,
		}}
	}

	if k > len(matches) {
		k = len(matches)
	}

	snippets := make([]types.ContextSnippet, 0, k)
	for _, m := range matches[:k] {
		snippets = append(snippets, types.ContextSnippet{
			ID:             m.entry.ID,
			Title:          m.entry.Title,
			Text:           m.entry.Text,
			RelevanceScore: float64(m.score),
		})
	}

	return snippets
}

// recommendationFor returns the pack recommendation sentence for the first
// known snippet ID, used by the fallback synthesizer.
func recommendationFor(contextIDs []string) string {
	for _, id := range contextIDs {
		for _, entry := range staticContextPack {
			if entry.ID == id {
				return entry.Text
			}
		}
	}
	return staticContextPack[len(staticContextPack)-1].Text
}
