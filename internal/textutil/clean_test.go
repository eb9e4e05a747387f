package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("hello\n\n\t  world", 0)
	assert.Equal(t, "hello world", got)
}

func TestClean_ReplacesURLs(t *testing.T) {
	got := Clean("see https://example.com/path?q=1 for details", 0)
	assert.Equal(t, "see [LINK] for details", got)
}

func TestClean_StripsNonASCII(t *testing.T) {
	got := Clean("café — déjà vu \U0001F600", 0)
	assert.NotContains(t, got, "é")
	assert.NotContains(t, got, "\U0001F600")
}

func TestClean_ElidesLargeCodeBlocks(t *testing.T) {
	block := "```" + strings.Repeat("x", 600) + "```"
	got := Clean("before "+block+" after", 0)
	assert.Contains(t, got, "[CODE_BLOCK]")
	assert.NotContains(t, got, strings.Repeat("x", 100))
}

func TestClean_KeepsSmallCodeBlocks(t *testing.T) {
	got := Clean("before ```fmt.Println()``` after", 0)
	assert.Contains(t, got, "fmt.Println()")
}

func TestClean_EnforcesLengthCap(t *testing.T) {
	got := Clean(strings.Repeat("a", 100), 10)
	assert.Len(t, got, 10)
}

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", Clean("", 100))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcd", 2))
	assert.Equal(t, "abcd", Truncate("abcd", 0))
}
