package types

// ContextSnippet is a single piece of supporting context for generation.
// Retrieved snippets carry a cosine similarity in [-1, 1]; static-pack
// snippets carry an integer keyword-match weight. Read-only after creation;
// its lifetime is one request.
type ContextSnippet struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// KeyPoint is a short fact extracted from a post (a question, a named
// technology, a stated problem) used to force specificity in prompts and in
// fallback text.
type KeyPoint string

// MaxKeyPoints caps the ordered key-point list per post.
const MaxKeyPoints = 4
