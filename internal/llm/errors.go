package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"google.golang.org/api/googleapi"
)

// configMarkers identify non-retryable setup failures in error text.
var configMarkers = []string{
	"api key",
	"api_key",
	"permission denied",
	"unauthorized",
	"not found",
	"invalid model",
	"unsupported model",
}

// transientMarkers identify retryable failures in error text.
var transientMarkers = []string{
	"rate limit",
	"quota",
	"timeout",
	"deadline",
	"unavailable",
	"overloaded",
	"internal error",
	"connection reset",
	"temporarily",
}

// ClassifyError classifies a backend failure as a configuration error
// (abandon the model), a transient error (retry with backoff), or unknown.
func ClassifyError(err error) types.ErrorKind {
	if err == nil {
		return types.ErrorKindNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.ErrorKindTransient
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 400, apiErr.Code == 401, apiErr.Code == 403, apiErr.Code == 404:
			return types.ErrorKindConfig
		case apiErr.Code == 429, apiErr.Code >= 500:
			return types.ErrorKindTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"400", "401", "403", "404"} {
		if strings.Contains(msg, marker) {
			return types.ErrorKindConfig
		}
	}
	for _, marker := range configMarkers {
		if strings.Contains(msg, marker) {
			return types.ErrorKindConfig
		}
	}
	for _, marker := range []string{"429", "500", "502", "503", "504"} {
		if strings.Contains(msg, marker) {
			return types.ErrorKindTransient
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return types.ErrorKindTransient
		}
	}

	return types.ErrorKindUnknown
}
