package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a backend cannot express a descriptor, e.g. binding
	// arrays on a binding without native array support.
	ErrUnsupported = errors.New("backend: unsupported by this backend")

	// ErrNoErrorScope is returned by PopErrorScope when no scope is open.
	ErrNoErrorScope = errors.New("backend: no error scope to pop")
)

// ErrorFilter selects the class of errors an error scope captures.
type ErrorFilter int

const (
	// ErrorFilterValidation captures validation errors, such as shader compile failures.
	ErrorFilterValidation ErrorFilter = iota

	// ErrorFilterOutOfMemory captures allocation failures.
	ErrorFilterOutOfMemory

	// ErrorFilterInternal captures backend-internal failures.
	ErrorFilterInternal
)

func (f ErrorFilter) String() string {
	switch f {
	case ErrorFilterValidation:
		return "validation"
	case ErrorFilterOutOfMemory:
		return "out-of-memory"
	case ErrorFilterInternal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorFilter(%d)", int(f))
	}
}

// GPUError is an error captured by an error scope.
type GPUError struct {
	Filter  ErrorFilter
	Message string
}

func (e *GPUError) Error() string {
	return fmt.Sprintf("gpu %s error: %s", e.Filter, e.Message)
}

// errorScope is one open scope. Only the first matching error is kept.
type errorScope struct {
	filter ErrorFilter
	err    *GPUError
}

// ErrorScopes is a stack of open error scopes. Devices that report errors synchronously from
// their creation calls use it to implement PushErrorScope and PopErrorScope.
// The zero value is an empty stack. It is not safe for concurrent use.
type ErrorScopes struct {
	stack []errorScope
}

// Push opens a scope capturing errors that match filter.
//
// Parameters:
//   - filter: the class of errors to capture
func (s *ErrorScopes) Push(filter ErrorFilter) {
	s.stack = append(s.stack, errorScope{filter: filter})
}

// Pop closes the innermost scope.
//
// Returns:
//   - error: the captured *GPUError, ErrNoErrorScope if the stack is empty, or nil
func (s *ErrorScopes) Pop() error {
	if len(s.stack) == 0 {
		return ErrNoErrorScope
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if top.err == nil {
		return nil
	}
	return top.err
}

// Capture routes an error to the innermost open scope whose filter matches.
//
// Parameters:
//   - filter: the class of the error
//   - message: the error message
//
// Returns:
//   - bool: true if a scope took the error, false if it was left uncaptured
func (s *ErrorScopes) Capture(filter ErrorFilter, message string) bool {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].filter != filter {
			continue
		}
		if s.stack[i].err == nil {
			s.stack[i].err = &GPUError{Filter: filter, Message: message}
		}
		return true
	}
	return false
}

// Depth returns the number of open scopes.
func (s *ErrorScopes) Depth() int {
	return len(s.stack)
}
