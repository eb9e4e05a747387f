package engine

import (
	"context"
	"strings"
	"time"

	"github.com/JonaN-tech/kilocode-ml-service/internal/config"
	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/JonaN-tech/kilocode-ml-service/internal/fetch"
	"github.com/JonaN-tech/kilocode-ml-service/internal/llm"
	"github.com/JonaN-tech/kilocode-ml-service/internal/textutil"
	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/sirupsen/logrus"
)

// Corpus names consumed by the pipeline.
const (
	CorpusStyle = "comments"
	CorpusDocs  = "docs"
)

// ContextRetriever is the nearest-neighbor search primitive. Implementations
// must be best-effort: failures yield an empty result, never a panic or
// error.
type ContextRetriever interface {
	Search(ctx context.Context, queryText, corpusName string, k int) []types.ContextSnippet
}

// Service is the comment-generation pipeline, constructed once at process
// start and shared across requests. All mutable state it holds (embedding
// cache, recent-comment ring) is internally synchronized.
type Service struct {
	cfg       *config.Config
	log       *logrus.Logger
	llm       llm.Client
	embedder  *embedding.Embedder
	retriever ContextRetriever
	recent    *RecentComments
	sleep     func(time.Duration)
}

// NewService wires the pipeline.
func NewService(cfg *config.Config, log *logrus.Logger, client llm.Client, embedder *embedding.Embedder, retriever ContextRetriever) *Service {
	return &Service{
		cfg:       cfg,
		log:       log,
		llm:       client,
		embedder:  embedder,
		retriever: retriever,
		recent:    NewRecentComments(cfg.RecentWindow),
		sleep:     time.Sleep,
	}
}

// GenerateComment runs the full pipeline for one post and always produces
// exactly one non-empty comment. The only error it ever returns is the
// admission rejection (*ContentTooLargeError); every other failure is
// absorbed into the fallback path.
func (s *Service) GenerateComment(ctx context.Context, post *types.NormalizedPost, topKStyle, topKDocs int) (string, error) {
	if err := Admit(len(post.Content), s.cfg.MaxContentLen); err != nil {
		s.log.WithFields(logrus.Fields{
			"post":   post.ID,
			"length": len(post.Content),
		}).Warn("content_rejected")
		return "", err
	}

	strategy := Route(post, s.cfg.ShortContentMax, s.cfg.LongContentMin)
	s.log.WithFields(logrus.Fields{
		"post":     post.ID,
		"platform": post.Platform,
		"strategy": strategy,
		"length":   len(post.Content),
	}).Info("post_routed")

	if strategy == StrategyAcknowledge {
		return AcknowledgmentComment(s.cfg.BrandName), nil
	}

	// Work on a cleaned copy; the post itself stays immutable.
	cleaned := textutil.Clean(post.Content, s.cfg.MaxContentLen)
	title := post.Title
	if title == "" {
		title = textutil.ExtractTitle(cleaned, 150)
	}

	hint := ""
	if post.Platform == types.PlatformReddit {
		hint = fetch.SubredditFromURL(post.URL)
	}

	snippets, styleExample := s.gatherContext(ctx, strategy, hint, title, cleaned, topKStyle, topKDocs)
	keyPoints := ExtractKeyPoints(title, cleaned)

	profile := ProfileFor(post.Platform)
	limits := QualityLimits{
		MinLen:       s.cfg.MinCommentLen,
		MaxLen:       minInt(s.cfg.MaxCommentLen, profile.MaxLen),
		MinSentences: profile.MinSentences,
		MaxSentences: s.cfg.MaxSentences,
		BrandName:    s.cfg.BrandName,
	}

	workingPost := &types.NormalizedPost{
		ID:          post.ID,
		Platform:    post.Platform,
		Title:       title,
		Content:     cleaned,
		URL:         post.URL,
		FetchStatus: post.FetchStatus,
	}

	outcome := s.runModelChain(ctx, PromptInput{
		Post:         workingPost,
		KeyPoints:    keyPoints,
		Snippets:     snippets,
		StyleExample: styleExample,
		Limits:       limits,
	})

	if outcome.Status == OutcomeAccepted {
		return outcome.Text, nil
	}

	s.log.WithFields(logrus.Fields{
		"post":     post.ID,
		"attempts": len(outcome.Trail),
	}).Warn("generation_exhausted_using_fallback")

	return Synthesize(s.cfg.BrandName, title, cleaned, keyPoints, snippetIDs(snippets), limits.MaxLen), nil
}

// gatherContext selects supporting context per strategy. Twitter and other
// lightweight routes never touch the embedding retriever. A non-empty
// subreddit hint is prepended to the retrieval query.
func (s *Service) gatherContext(ctx context.Context, strategy Strategy, subreddit, title, content string, topKStyle, topKDocs int) ([]types.ContextSnippet, string) {
	if strategy == StrategyLightweight {
		return StaticContext(title, content, 3), ""
	}

	query := strings.TrimSpace(title + "\n\n" + content)
	if subreddit != "" {
		query = "r/" + subreddit + "\n" + query
	}
	if strategy == StrategyLongForm {
		if chunk := s.bestChunk(ctx, title, content); chunk != "" {
			query = chunk
		}
	}

	docSnips := s.retriever.Search(ctx, query, CorpusDocs, topKDocs)
	styleSnips := s.retriever.Search(ctx, query, CorpusStyle, topKStyle)

	styleExample := ""
	if len(styleSnips) > 0 {
		styleExample = styleSnips[0].Text
	}

	// Retrieval is best-effort; an empty result degrades to the static pack.
	if len(docSnips) == 0 {
		return StaticContext(title, content, 3), styleExample
	}
	return docSnips, styleExample
}

// bestChunk chunks long content and returns the chunk most similar to the
// post title (or the content head when there is no title). Any embedding
// failure degrades to the first chunk.
func (s *Service) bestChunk(ctx context.Context, title, content string) string {
	chunks := textutil.Chunk(content, textutil.DefaultChunkChars, textutil.DefaultChunkOverlap, textutil.DefaultMaxChunks)
	if len(chunks) == 0 {
		return ""
	}
	if len(chunks) == 1 {
		return chunks[0]
	}

	query := title
	if query == "" {
		query = textutil.Truncate(content, 200)
	}

	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		s.log.WithError(err).Warn("chunk_ranking_embed_failed")
		return chunks[0]
	}

	chunkVecs, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		s.log.WithError(err).Warn("chunk_embedding_failed")
		return chunks[0]
	}

	bestIdx, bestScore := 0, -2.0
	for i, vec := range chunkVecs {
		if score := embedding.Cosine(queryVec, vec); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return chunks[bestIdx]
}

func snippetIDs(snippets []types.ContextSnippet) []string {
	ids := make([]string, 0, len(snippets))
	for _, s := range snippets {
		ids = append(ids, s.ID)
	}
	return ids
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
