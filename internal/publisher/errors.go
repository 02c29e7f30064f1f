package publisher

import "fmt"

// Publish failure kinds. None of them are auto-retried; the caller
// decides (the review flow keeps the session so "send" can be retried,
// the scheduler just logs and waits for the next tick).
const (
	FailureRateLimited = "rate_limited"
	FailureDuplicate   = "duplicate"
	FailureAuth        = "auth"
	FailureOther       = "other"
)

type PublishError struct {
	Kind       string
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed (%s): HTTP %d: %s", e.Kind, e.StatusCode, e.Message)
}
