package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) (*Builder, string) {
	t.Helper()
	dir := t.TempDir()
	return NewBuilder(embedding.New(axisBackend{}, 20), 20, dir), dir
}

func TestBuildStyleCorpus(t *testing.T) {
	builder, dir := newTestBuilder(t)

	jsonl := filepath.Join(t.TempDir(), "comments.jsonl")
	lines := []string{
		`{"comment_text": "First prior comment about debugging.", "post_url": "https://example.com/1"}`,
		`{"comment_text": "Second prior comment about testing."}`,
		``,
		`{"comment_text": "first   prior comment about debugging."}`,
		`{"comment_text": "   "}`,
	}
	require.NoError(t, os.WriteFile(jsonl, []byte(strings.Join(lines, "\n")), 0o644))

	n, err := builder.BuildStyleCorpus(context.Background(), jsonl, "comments")
	require.NoError(t, err)
	// The near-duplicate and the blank records are dropped.
	assert.Equal(t, 2, n)

	corpus, err := NewStore(dir).Load("comments")
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.Len())
	assert.Equal(t, "comment_0000", corpus.Meta[0].ID)
	assert.Equal(t, "https://example.com/1", corpus.Meta[0].Title)
}

func TestBuildStyleCorpus_RejectsEmptyInput(t *testing.T) {
	builder, _ := newTestBuilder(t)
	jsonl := filepath.Join(t.TempDir(), "comments.jsonl")
	require.NoError(t, os.WriteFile(jsonl, []byte("\n\n"), 0o644))

	_, err := builder.BuildStyleCorpus(context.Background(), jsonl, "comments")
	assert.Error(t, err)
}

func TestBuildStyleCorpus_RejectsBadJSONL(t *testing.T) {
	builder, _ := newTestBuilder(t)
	jsonl := filepath.Join(t.TempDir(), "comments.jsonl")
	require.NoError(t, os.WriteFile(jsonl, []byte("{broken"), 0o644))

	_, err := builder.BuildStyleCorpus(context.Background(), jsonl, "comments")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestBuildDocsCorpus(t *testing.T) {
	builder, dir := newTestBuilder(t)

	doc := filepath.Join(t.TempDir(), "docs.md")
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString(strings.Repeat("Documentation paragraph text. ", 20))
		b.WriteString("\n\n")
	}
	require.NoError(t, os.WriteFile(doc, []byte(b.String()), 0o644))

	n, err := builder.BuildDocsCorpus(context.Background(), doc, "docs")
	require.NoError(t, err)
	assert.Greater(t, n, 1)

	corpus, err := NewStore(dir).Load("docs")
	require.NoError(t, err)
	assert.Equal(t, n, corpus.Len())
	assert.Equal(t, "doc_0000", corpus.Meta[0].ID)
}

func TestChunkDocument_NumberedSections(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 6; i++ {
		b.WriteString("\n")
		b.WriteString(string(rune('0' + i)))
		b.WriteString(". ")
		b.WriteString(strings.Repeat("Section body sentence. ", 15))
	}

	chunks := ChunkDocument(b.String())
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunkDocument_OverlapPrefix(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteString(strings.Repeat("Paragraph sentence for chunking. ", 30))
		b.WriteString("\n\n")
	}

	chunks := ChunkDocument(b.String())
	require.Greater(t, len(chunks), 1)

	// Each later chunk starts with a tail of its predecessor's raw text.
	assert.Contains(t, chunks[1], "Paragraph sentence for chunking.")
}

func TestChunkDocument_Empty(t *testing.T) {
	assert.Empty(t, ChunkDocument(""))
}
