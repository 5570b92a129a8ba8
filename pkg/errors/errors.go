// Package errors provides structured error handling for statekit.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// NoProviderMessage is the fixed message carried by every configuration error.
const NoProviderMessage = "You must wrap your <Subscribe> components with a <Provider>"

// ErrNoProvider is the sentinel matched by [ConfigurationError] through errors.Is.
var ErrNoProvider = errors.New(NoProviderMessage)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown is the kind of an error nobody categorized.
	KindUnknown ErrorKind = iota
	// KindCallback indicates a failure inside a caller-supplied function.
	KindCallback
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindCallback:
		return "callback"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ConfigurationError is raised when a binding activates and one of its
// descriptors cannot be resolved, either because there is no enclosing
// scope at all or because the scope chain holds no matching container.
//
// The message never varies; Descriptor is kept for diagnostics only.
type ConfigurationError struct {
	// Descriptor describes the descriptor that failed to resolve.
	Descriptor string
}

func (e *ConfigurationError) Error() string {
	return NoProviderMessage
}

// Is reports whether target is [ErrNoProvider].
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNoProvider
}

// StateError represents a structured error raised around a container.
type StateError struct {
	// Op is the operation that failed (e.g., "state.Completion").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Container is the diagnostic name of the container, if any.
	Container string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *StateError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s [%s] container=%s: %v", e.Op, e.Kind, e.Container, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by statekit.
type ErrorHandler interface {
	// HandleError is called for every reported error, including panics
	// recovered on goroutines statekit owns.
	HandleError(err *StateError)
}
