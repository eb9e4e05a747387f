package types

// QualityMetrics holds the measurements computed for every draft, regardless
// of which rule failed first.
type QualityMetrics struct {
	Length              int
	SentenceCount       int
	HasBrandMention     bool
	ForbiddenPhraseHit  string
	GenericPhraseHits   []string
	ContentOverlapCount int
}

// QualityVerdict is the structured accept/reject outcome of the quality
// validator. Computed fresh per attempt; never persisted.
type QualityVerdict struct {
	IsValid       bool
	FailureReason string
	Metrics       QualityMetrics
}
