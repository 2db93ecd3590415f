package domain

import "fmt"

// PolicyViolationError means policy enforcement denied an operation before any
// I/O happened. It is fatal to the calling operation and never retried.
type PolicyViolationError struct {
	Tool   string
	Reason string
}

func (e *PolicyViolationError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("policy violation: tool %s is blocked (%s)", e.Tool, e.Reason)
	}
	return fmt.Sprintf("policy violation: %s", e.Reason)
}

// ConfigurationError means the engine was constructed from an invalid
// document (threshold ordering, non-numeric weights, ...). Fatal, no retry.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// SourceUnavailableError wraps a per-source or per-seed failure. It is caught
// at the lowest level and folded into a zero contribution; it never escapes
// a scan.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// PersistenceError means the cycle's report could not be written. It
// propagates: the report is the cycle's purpose.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist report %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError means the summary push failed. Logged and swallowed,
// never fails a cycle.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
