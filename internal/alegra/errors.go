package alegra

import "fmt"

// TransportError reports a network or HTTP-level failure reaching the API.
// It is fatal to the enclosing pipeline run and is not retried here.
type TransportError struct {
	Endpoint string
	Offset   int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("alegra: request %s at start=%d failed: %v", e.Endpoint, e.Offset, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response that could not be parsed as the expected
// JSON array envelope.
type DecodeError struct {
	Endpoint string
	Offset   int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("alegra: decoding %s response at start=%d: %v", e.Endpoint, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
