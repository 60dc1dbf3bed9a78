package daemon

import "fmt"

// APIError is returned when the daemon answers with a non-200 status.
type APIError struct {
	Op     string // logical operation, e.g. "set_target"
	Status int    // HTTP status code
	Body   string // response body, truncated
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon %s: status %d: %s", e.Op, e.Status, e.Body)
}

// maxErrBody bounds how much of an error response body is kept.
const maxErrBody = 512
