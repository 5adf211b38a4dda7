package picodraw

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the package. Typed errors below wrap
// these, so callers can match either the category with errors.Is or the
// detail with errors.As.
var (
	// ErrTrace is the category of errors raised while tracing a shader
	// function.
	ErrTrace = errors.New("picodraw: trace error")

	// ErrValidation is the category of errors raised while compiling a
	// graph into a program.
	ErrValidation = errors.New("picodraw: validation error")

	// ErrRecording is the category of errors raised while recording a
	// command buffer.
	ErrRecording = errors.New("picodraw: recording error")

	// ErrCompile is the category of errors raised by a backend while
	// translating a program.
	ErrCompile = errors.New("picodraw: backend compile error")

	// ErrResource is the category of errors raised for unknown or
	// destroyed backend resources.
	ErrResource = errors.New("picodraw: resource error")
)

// TraceError reports a structural mistake made while tracing a shader
// function, such as mixing handles from two builders.
type TraceError struct {
	Op     Op
	Reason string
}

func (e *TraceError) Error() string {
	if e.Op < opCount {
		return fmt.Sprintf("picodraw: trace error at %s: %s", e.Op, e.Reason)
	}
	return "picodraw: trace error: " + e.Reason
}

func (e *TraceError) Unwrap() error { return ErrTrace }

// ValidationError reports a type error found while compiling a graph.
// Addr names the offending node.
type ValidationError struct {
	Addr   OpAddr
	Op     Op
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("picodraw: validation error at node %d (%s): %s", e.Addr, e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RecordingError reports a misuse of the command buffer recording API,
// such as writing quad data out of slot order or closing a quad with
// slots unwritten.
type RecordingError struct {
	Cmd    CommandKind
	Reason string
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("picodraw: recording error in %s: %s", e.Cmd, e.Reason)
}

func (e *RecordingError) Unwrap() error { return ErrRecording }

// CompileError reports a backend failure to translate a program, for
// example a shader module the GPU driver rejects. Backends surface it
// from CreateShader, never from Draw.
type CompileError struct {
	Backend string
	Detail  string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("picodraw: %s compile error: %s: %v", e.Backend, e.Detail, e.Err)
	}
	return fmt.Sprintf("picodraw: %s compile error: %s", e.Backend, e.Detail)
}

func (e *CompileError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrCompile
}

// Is lets errors.Is match ErrCompile even when a driver error is
// wrapped.
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// ResourceError reports an operation on a handle the backend does not
// know, usually because it was never created or already deleted.
type ResourceError struct {
	Kind   string
	Handle uint64
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("picodraw: unknown %s handle %d", e.Kind, e.Handle)
}

func (e *ResourceError) Unwrap() error { return ErrResource }
