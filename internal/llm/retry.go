package llm

import (
	"math/rand"
	"strings"
	"time"
)

// CalculateBackoff calculates exponential backoff with jitter. Jitter keeps
// concurrent retriers from stampeding the API at the same instant.
func CalculateBackoff(baseDelay time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}

// isRetryableError returns true if the error should trigger a retry with the
// next key in the rotation.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, code := range []string{"429", "500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	for _, needle := range []string{"connection", "timeout", "deadline", "unavailable", "quota", "RESOURCE_EXHAUSTED"} {
		if strings.Contains(strings.ToLower(msg), strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
