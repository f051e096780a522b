package domain

import "sync"

// TestError is a recoverable problem found while assembling the suite
type TestError struct {
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
}

// Error implements the error interface
func (e TestError) Error() string {
	if e.Location == nil {
		return e.Message
	}
	return e.Location.String() + ": " + e.Message
}

// ErrorSink accumulates TestErrors. Safe for concurrent use.
type ErrorSink struct {
	mu     sync.Mutex
	errors []TestError
}

// NewErrorSink creates an empty ErrorSink
func NewErrorSink() *ErrorSink {
	return &ErrorSink{}
}

// Add appends errors to the sink
func (s *ErrorSink) Add(errs ...TestError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errs...)
}

// Errors returns a copy of the collected errors in insertion order
func (s *ErrorSink) Errors() []TestError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TestError, len(s.errors))
	copy(out, s.errors)
	return out
}

// Len returns the number of collected errors
func (s *ErrorSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}
