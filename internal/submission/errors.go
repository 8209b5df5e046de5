package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the survey backend URL is missing. Submission is
	// never attempted while it is.
	ErrNotConfigured    = errors.New("survey api base url not configured")
	ErrNotTerminal      = errors.New("survey is not on its final step")
	ErrInFlight         = errors.New("a submission is already in progress")
	ErrAlreadySubmitted = errors.New("survey already submitted")
)

// TransportError reports a failed exchange with the survey backend: either a
// network failure (StatusCode 0) or a non-2xx response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("survey api request failed: %v", e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("survey api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("survey api error: status %d, body: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }
