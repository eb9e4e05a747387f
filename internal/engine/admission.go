// Package engine implements the comment-generation orchestration pipeline:
// admission control, platform routing, context retrieval, prompt assembly,
// multi-model generation with fallback, quality validation, and the
// deterministic last-resort synthesizer.
package engine

import "fmt"

// ContentTooLargeError is the admission rejection. It is the only pipeline
// failure ever surfaced to the caller.
type ContentTooLargeError struct {
	Length int
	Limit  int
}

func (e *ContentTooLargeError) Error() string {
	return fmt.Sprintf("content too large: %d chars exceeds limit of %d", e.Length, e.Limit)
}

// Admit rejects content that exceeds the configured hard ceiling before any
// retrieval or generation is attempted. Synchronous, no side effects, never
// retried.
func Admit(contentLen, maxContentLen int) error {
	if contentLen > maxContentLen {
		return &ContentTooLargeError{Length: contentLen, Limit: maxContentLen}
	}
	return nil
}
