package platform

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized indicates the platform rejected the credential
// (403-class response or a malformed payload where an authenticated
// one was expected). Never retried automatically.
var ErrUnauthorized = errors.New("unauthorized")

// RetryError instructs the caller to back off and retry the same
// operation unchanged. It covers rate limiting, not-yet-indexed search
// results, and any other non-success status the platform is optimistic
// about.
type RetryError struct {
	After time.Duration
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry after %v", e.After)
}

// IsRetry reports whether err asks for a backoff, returning the delay.
func IsRetry(err error) (time.Duration, bool) {
	var re *RetryError
	if errors.As(err, &re) {
		return re.After, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is a 403-class failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
