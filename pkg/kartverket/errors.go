package kartverket

import "fmt"

// InvalidQueryError reports a query that failed local validation. No network
// call is made for an invalid query.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("kartverket: invalid query: %s: %s", e.Field, e.Reason)
}

// invalidQuery is shorthand for building an InvalidQueryError.
func invalidQuery(field, reason string) error {
	return &InvalidQueryError{Field: field, Reason: reason}
}

// TransportError reports a failed registry call: a network error, a timeout,
// or a non-2xx status. It is distinct from an empty-but-valid response.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kartverket: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("kartverket: %s: status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }
