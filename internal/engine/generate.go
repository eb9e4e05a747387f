package engine

import (
	"context"
	"regexp"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/llm"
	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/sirupsen/logrus"
)

// OutcomeStatus is a terminal state of the generation state machine.
type OutcomeStatus string

const (
	// OutcomeAccepted means a draft passed quality validation.
	OutcomeAccepted OutcomeStatus = "accepted"
	// OutcomeExhausted means every model/retry combination was consumed.
	OutcomeExhausted OutcomeStatus = "exhausted"
)

// Outcome is the result of running the model chain. The engine never raises
// past its own boundary: it either carries an accepted draft or signals
// exhaustion.
type Outcome struct {
	Status OutcomeStatus
	Text   string
	Trail  []types.GenerationAttempt
}

var (
	boldMarkRe   = regexp.MustCompile(`\*\*`)
	newlineRunRe = regexp.MustCompile(`\n+`)
)

// CleanDraft normalizes a raw model response: strips markdown bold marks and
// collapses newlines.
func CleanDraft(text string) string {
	text = boldMarkRe.ReplaceAllString(text, "")
	text = newlineRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// runModelChain walks the statically ordered model list. Per model it spends
// up to maxRetries+1 attempts: configuration errors abandon the model
// immediately, transient errors retry with exponential backoff, unknown
// errors retry once, and quality failures retry with a failure-annotated
// prompt.
func (s *Service) runModelChain(ctx context.Context, in PromptInput) Outcome {
	systemPrompt := BuildSystemPrompt(in.Post.Platform, in.Limits)
	sampling := llm.DefaultSampling()

	var trail []types.GenerationAttempt

	for _, modelName := range s.cfg.ModelChain {
		retriesUsed := 0
		unknownRetried := false
		lastFailure := ""

	modelLoop:
		for retriesUsed <= s.cfg.MaxRetries {
			version := types.PromptFirst
			if lastFailure != "" {
				version = types.PromptRetry
			}

			attempt := types.GenerationAttempt{
				ModelName:     modelName,
				PromptVersion: version,
				IsRetry:       retriesUsed > 0,
			}

			text, err := s.llm.GenerateText(ctx, llm.GenerateRequest{
				SystemPrompt: systemPrompt,
				UserPrompt:   BuildUserPrompt(in, version, lastFailure),
				ModelName:    modelName,
				Sampling:     sampling,
			})

			if err != nil {
				kind := llm.ClassifyError(err)
				attempt.ErrorKind = kind
				trail = append(trail, attempt)

				s.log.WithError(err).WithFields(logrus.Fields{
					"model":      modelName,
					"error_kind": kind,
					"retry":      retriesUsed,
				}).Warn("generation_attempt_failed")

				switch kind {
				case types.ErrorKindConfig:
					// Misconfigured model: advance without spending budget.
					break modelLoop
				case types.ErrorKindTransient:
					if retriesUsed >= s.cfg.MaxRetries {
						break modelLoop
					}
					s.sleep(s.cfg.BackoffBase * (1 << retriesUsed))
					retriesUsed++
					continue
				default:
					if unknownRetried || retriesUsed >= s.cfg.MaxRetries {
						break modelLoop
					}
					unknownRetried = true
					retriesUsed++
					continue
				}
			}

			draft := CleanDraft(text)
			attempt.ResultText = draft
			trail = append(trail, attempt)

			verdict := ValidateQuality(draft, in.Post, in.Limits)
			if verdict.IsValid && !s.recent.IsUnique(draft) {
				verdict = types.QualityVerdict{
					IsValid:       false,
					FailureReason: "duplicate_comment",
					Metrics:       verdict.Metrics,
				}
			}

			if verdict.IsValid {
				s.log.WithFields(logrus.Fields{
					"model":     modelName,
					"length":    verdict.Metrics.Length,
					"sentences": verdict.Metrics.SentenceCount,
					"attempts":  len(trail),
				}).Info("comment_accepted")
				return Outcome{Status: OutcomeAccepted, Text: draft, Trail: trail}
			}

			s.log.WithFields(logrus.Fields{
				"model":  modelName,
				"reason": verdict.FailureReason,
				"retry":  retriesUsed,
			}).Warn("comment_quality_failed")

			if retriesUsed >= s.cfg.MaxRetries {
				break modelLoop
			}
			lastFailure = verdict.FailureReason
			retriesUsed++
		}
	}

	return Outcome{Status: OutcomeExhausted, Trail: trail}
}
