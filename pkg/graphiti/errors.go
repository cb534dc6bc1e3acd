package graphiti

import (
	"errors"
	"fmt"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
)

var (
	// ErrUsage matches every *UsageError.
	ErrUsage = errors.New("usage error")

	// ErrEngineInit wraps failures to create a library handle or graph descriptor.
	ErrEngineInit = errors.New("engine initialization failed")
)

// Sentinels for the native status taxonomy; errors.Is matches any
// *StatusError carrying the same status.
var (
	ErrNotInitialized        = &StatusError{Status: nvgraph.StatusNotInitialized}
	ErrAllocFailed           = &StatusError{Status: nvgraph.StatusAllocFailed}
	ErrInvalidValue          = &StatusError{Status: nvgraph.StatusInvalidValue}
	ErrArchMismatch          = &StatusError{Status: nvgraph.StatusArchMismatch}
	ErrMappingError          = &StatusError{Status: nvgraph.StatusMappingError}
	ErrExecutionFailed       = &StatusError{Status: nvgraph.StatusExecutionFailed}
	ErrInternalError         = &StatusError{Status: nvgraph.StatusInternalError}
	ErrTypeNotSupported      = &StatusError{Status: nvgraph.StatusTypeNotSupported}
	ErrNotConverged          = &StatusError{Status: nvgraph.StatusNotConverged}
	ErrGraphTypeNotSupported = &StatusError{Status: nvgraph.StatusGraphTypeNotSupported}
)

// StatusError is a non-success status returned by a native call.
type StatusError struct {
	// Op is the native entry point, e.g. "nvgraphSssp".
	Op     string
	Status nvgraph.Status
	// Message is the engine's own description of Status.
	Message string
}

func (e *StatusError) Error() string {
	if e.Op == "" {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Status)
}

func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Status == e.Status
}

// UsageError is a host-side precondition violation. It is always raised
// before the corresponding native call is issued.
type UsageError struct {
	Op     string
	Reason string
}

func usageErrorf(op string, format string, args ...any) error {
	return &UsageError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// ReleaseError reports that a handle or descriptor could not be released.
// The device memory behind it is owned by the engine and may have leaked.
type ReleaseError struct {
	Resource string
	Err      error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("releasing %s failed, device memory may have leaked: %v", e.Resource, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// translateStatus maps a native status onto the error taxonomy. It returns
// nil only for StatusSuccess.
func translateStatus(engine nvgraph.Engine, op string, status nvgraph.Status) error {
	if status == nvgraph.StatusSuccess {
		return nil
	}
	return &StatusError{
		Op:      op,
		Status:  status,
		Message: engine.StatusString(status),
	}
}
