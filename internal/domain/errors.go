package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyRunning is returned by Start when a job is already in flight.
// Only one download may run at a time; a second request is rejected, not queued.
var ErrAlreadyRunning = errors.New("a download is already running")

// DependencyNotFoundError indicates a required external tool could not be resolved
type DependencyNotFoundError struct {
	Tool string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("required dependency not found: %s", e.Tool)
}

// ValidationError aggregates every violated constraint found while resolving
// download settings, so the caller can display all problems at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid download settings: " + strings.Join(e.Violations, "; ")
}

// Add records a violation
func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// HasViolations reports whether any constraint was violated
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}
