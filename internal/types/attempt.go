package types

// ErrorKind classifies a generation backend failure.
type ErrorKind string

const (
	// ErrorKindNone means the attempt produced a response
	ErrorKindNone ErrorKind = ""
	// ErrorKindConfig is a non-retryable setup failure (bad credentials,
	// unknown model, permission denied)
	ErrorKindConfig ErrorKind = "config_error"
	// ErrorKindTransient is a retryable failure (timeout, rate limit,
	// server unavailable)
	ErrorKindTransient ErrorKind = "transient_error"
	// ErrorKindUnknown is any failure that could not be classified
	ErrorKindUnknown ErrorKind = "unknown_error"
)

// PromptVersion distinguishes the first-attempt prompt from the
// failure-annotated retry prompt.
type PromptVersion string

const (
	// PromptFirst is the initial task instruction
	PromptFirst PromptVersion = "first"
	// PromptRetry is the stronger instruction that names the prior rejection
	PromptRetry PromptVersion = "retry"
)

// GenerationAttempt records one (model x retry) generation call. The sequence
// across a request forms the attempt trail, bounded by
// maxModels x (maxRetries+1).
type GenerationAttempt struct {
	ModelName     string
	PromptVersion PromptVersion
	IsRetry       bool
	ResultText    string
	ErrorKind     ErrorKind
}
