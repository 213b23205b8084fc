package practicum

import "fmt"

// ConnectionError reports a transport-level failure (DNS, refused, timeout).
type ConnectionError struct {
	Endpoint string
	From     int64
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("practicum: request to %s (from_date=%d) failed: %v", e.Endpoint, e.From, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnexpectedStatusError reports a non-200 HTTP response.
type UnexpectedStatusError struct {
	Code   int
	Status string
	Body   string
	From   int64
}

// maxErrBody caps how much of a payload the rendered error carries. The
// text ends up in log lines and Telegram messages (4096-char limit), so an
// oversized body must not make the error itself undeliverable.
const maxErrBody = 512

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("practicum: unexpected status %s (from_date=%d): %s",
		e.Status, e.From, truncate(e.Body, maxErrBody))
}

// APIRefusalError reports the API's soft-failure convention: a 200 response
// whose body carries an "error" or "code" key instead of homework data.
type APIRefusalError struct {
	Key   string
	Value any
	From  int64
}

func (e *APIRefusalError) Error() string {
	return fmt.Sprintf("practicum: API refused request (from_date=%d): %s=%s",
		e.From, e.Key, truncate(fmt.Sprint(e.Value), maxErrBody))
}

// TypeError reports a payload field of the wrong shape, naming the type
// actually observed.
type TypeError struct {
	Field string
	Want  string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("practicum: %s is %T, want %s", e.Field, e.Value, e.Want)
}

// MissingKeyError reports a required key absent from the payload.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("practicum: response is missing key %q", e.Key)
}

// UnknownStatusError reports a homework status outside the known verdict set.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("practicum: unknown homework status %q", e.Status)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... (truncated)"
}
