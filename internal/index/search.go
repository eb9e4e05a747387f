package index

import (
	"context"
	"sort"

	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/sirupsen/logrus"
)

// Retriever performs cosine nearest-neighbor search over a Store. Retrieval
// is best-effort: every failure path yields an empty result, never an error.
type Retriever struct {
	store    *Store
	embedder *embedding.Embedder
	log      *logrus.Logger
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(store *Store, embedder *embedding.Embedder, log *logrus.Logger) *Retriever {
	return &Retriever{store: store, embedder: embedder, log: log}
}

// Search embeds queryText and returns the top-k records of the named corpus
// ordered by descending cosine similarity, ties broken by insertion order.
// k=0 is a no-op that does not touch the store.
func (r *Retriever) Search(ctx context.Context, queryText, corpusName string, k int) []types.ContextSnippet {
	if k <= 0 || queryText == "" {
		return nil
	}

	corpus, err := r.store.Load(corpusName)
	if err != nil {
		r.log.WithError(err).WithField("corpus", corpusName).Warn("retrieval_store_load_failed")
		return nil
	}
	if corpus.Len() == 0 {
		return nil
	}

	queryVec, err := r.embedder.EmbedOne(ctx, queryText)
	if err != nil {
		r.log.WithError(err).WithField("corpus", corpusName).Warn("retrieval_embed_failed")
		return nil
	}

	return rank(corpus, queryVec, k)
}

// rank scores every corpus record against queryVec and returns the top k.
func rank(corpus *Corpus, queryVec []float32, k int) []types.ContextSnippet {
	type scored struct {
		idx   int
		score float64
	}

	scores := make([]scored, corpus.Len())
	for i, vec := range corpus.Vectors {
		scores[i] = scored{idx: i, score: embedding.Cosine(queryVec, vec)}
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	snippets := make([]types.ContextSnippet, 0, k)
	for _, s := range scores[:k] {
		rec := corpus.Meta[s.idx]
		snippets = append(snippets, types.ContextSnippet{
			ID:             rec.ID,
			Title:          rec.Title,
			Text:           rec.Text,
			RelevanceScore: s.score,
		})
	}

	return snippets
}
