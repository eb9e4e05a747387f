package engine

import (
	"strings"
	"testing"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_Deterministic(t *testing.T) {
	first := Synthesize("KiloCode", "Stuck with Docker networking", "I keep struggling with container DNS.", nil, []string{"debugging"}, 0)
	second := Synthesize("KiloCode", "Stuck with Docker networking", "I keep struggling with container DNS.", nil, []string{"debugging"}, 0)
	assert.Equal(t, first, second)
}

func TestSynthesize_AlwaysMentionsBrand(t *testing.T) {
	inputs := []struct {
		title, content string
	}{
		{"Stuck with Docker networking", "I keep struggling with container DNS."},
		{"", ""},
		{"Random musings", "nothing technical here at all"},
		{"React question", "Trying to memoize a component tree."},
	}
	for _, in := range inputs {
		comment := Synthesize("KiloCode", in.title, in.content, nil, nil, 0)
		assert.Contains(t, strings.ToLower(comment), "kilocode", "title=%q", in.title)
	}
}

func TestSynthesize_NeverEmitsGenericPhrases(t *testing.T) {
	inputs := []struct {
		title, content string
		ids            []string
	}{
		{"Debugging a crash", "The error happens under load.", []string{"debugging"}},
		{"", "", nil},
		{"Trouble with CI", "Our pipeline is failing with timeout errors.", []string{"automation"}},
	}
	for _, in := range inputs {
		comment := strings.ToLower(Synthesize("KiloCode", in.title, in.content, nil, in.ids, 0))
		for _, phrase := range GenericPhrases {
			assert.NotContains(t, comment, phrase)
		}
	}
}

func TestSynthesize_UsesProblemStatement(t *testing.T) {
	comment := Synthesize("KiloCode", "Need help", "I am struggling with React rendering on every keystroke.", nil, nil, 0)
	assert.Contains(t, comment, "React rendering")
}

func TestSynthesize_UsesQuestionKeyPoint(t *testing.T) {
	points := []types.KeyPoint{"Question: How do I profile this?"}
	comment := Synthesize("KiloCode", "Perf", "content", points, nil, 0)
	assert.Contains(t, strings.ToLower(comment), "how do i profile this")
}

func TestSynthesize_RecommendationFollowsContext(t *testing.T) {
	comment := Synthesize("KiloCode", "Broken build", "something is failing", nil, []string{"debugging"}, 0)
	assert.Contains(t, comment, "breakpoints")
}

func TestSynthesize_RespectsMaxLen(t *testing.T) {
	points := []types.KeyPoint{"Question: How should I restructure the build pipeline to stop the flaky deployments from blocking releases?"}
	content := "I am struggling with Kubernetes deployments that keep flaking in CI. " +
		"Every release gets blocked and the team is losing hours to reruns."

	unbounded := Synthesize("KiloCode", "Flaky Kubernetes deployments", content, points, []string{"debugging"}, 0)
	require.Greater(t, len(unbounded), 280)

	capped := Synthesize("KiloCode", "Flaky Kubernetes deployments", content, points, []string{"debugging"}, 280)
	assert.LessOrEqual(t, len(capped), 280)
	assert.Contains(t, strings.ToLower(capped), "kilocode")
}

func TestTruncateAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one runs past the limit."
	cut := truncateAtSentence(text, 50)
	assert.Equal(t, "First sentence here. Second sentence follows.", cut)

	// No terminator inside the window falls back to a hard cut.
	hard := truncateAtSentence("no terminators anywhere in this stretch of text", 10)
	assert.LessOrEqual(t, len(hard), 10)
	assert.NotEmpty(t, hard)
}

func TestAcknowledgmentComment(t *testing.T) {
	comment := AcknowledgmentComment("KiloCode")
	require.NotEmpty(t, comment)
	assert.Contains(t, comment, "KiloCode")
}
