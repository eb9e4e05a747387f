package index

import (
	"context"
	"io"
	"testing"

	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisBackend embeds every text as the unit vector along the first axis.
type axisBackend struct{}

func (axisBackend) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRetriever(t *testing.T, vectors [][]float32, meta []Record) *Retriever {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, WriteCorpus(dir, "docs", vectors, meta))
	return NewRetriever(NewStore(dir), embedding.New(axisBackend{}, 20), quietLogger())
}

func TestSearch_OrdersByCosineSimilarity(t *testing.T) {
	retriever := newTestRetriever(t,
		[][]float32{{0, 1}, {1, 0}, {0.7071, 0.7071}},
		[]Record{
			{ID: "orthogonal", Text: "far"},
			{ID: "aligned", Text: "near"},
			{ID: "diagonal", Text: "middle"},
		},
	)

	snippets := retriever.Search(context.Background(), "query", "docs", 3)
	require.Len(t, snippets, 3)
	assert.Equal(t, "aligned", snippets[0].ID)
	assert.Equal(t, "diagonal", snippets[1].ID)
	assert.Equal(t, "orthogonal", snippets[2].ID)
	assert.Greater(t, snippets[0].RelevanceScore, snippets[1].RelevanceScore)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	retriever := newTestRetriever(t,
		[][]float32{{1, 0}, {1, 0}, {1, 0}},
		[]Record{
			{ID: "first", Text: "a"},
			{ID: "second", Text: "b"},
			{ID: "third", Text: "c"},
		},
	)

	snippets := retriever.Search(context.Background(), "query", "docs", 3)
	require.Len(t, snippets, 3)
	assert.Equal(t, "first", snippets[0].ID)
	assert.Equal(t, "second", snippets[1].ID)
	assert.Equal(t, "third", snippets[2].ID)
}

func TestSearch_KLargerThanCorpus(t *testing.T) {
	retriever := newTestRetriever(t,
		[][]float32{{1, 0}},
		[]Record{{ID: "only", Text: "a"}},
	)

	snippets := retriever.Search(context.Background(), "query", "docs", 10)
	assert.Len(t, snippets, 1)
}

func TestSearch_ZeroKIsNoOp(t *testing.T) {
	retriever := NewRetriever(NewStore(t.TempDir()), embedding.New(axisBackend{}, 20), quietLogger())
	assert.Nil(t, retriever.Search(context.Background(), "query", "docs", 0))
}

func TestSearch_EmptyQueryIsNoOp(t *testing.T) {
	retriever := NewRetriever(NewStore(t.TempDir()), embedding.New(axisBackend{}, 20), quietLogger())
	assert.Nil(t, retriever.Search(context.Background(), "", "docs", 5))
}

func TestSearch_MissingCorpusReturnsNil(t *testing.T) {
	retriever := NewRetriever(NewStore(t.TempDir()), embedding.New(axisBackend{}, 20), quietLogger())
	assert.Nil(t, retriever.Search(context.Background(), "query", "absent", 5))
}
