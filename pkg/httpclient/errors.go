package httpclient

import "fmt"

// ConnectionError is the single error kind returned by the executor. It covers resolution,
// connect, timeout, TLS and stream failures; Err holds the underlying cause.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
