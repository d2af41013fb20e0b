package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// IsTerminal reports whether an error should short-circuit remaining
// retries. An explicit block (403) or a missing page (404) will not get
// better on the next attempt.
func IsTerminal(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusForbidden || se.Status == http.StatusNotFound
	}
	return false
}

// IsRateLimited reports whether the remote answered 429.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusTooManyRequests
}
