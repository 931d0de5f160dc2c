package upstream

import "fmt"

// Error is the single error shape every upstream call returns, independent of
// the transport. StatusCode is the HTTP status of the failed response, or 0
// when the request never completed.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

func newError(status int, message string) *Error {
	if message == "" {
		message = "An error occurred"
	}
	return &Error{StatusCode: status, Message: message}
}
